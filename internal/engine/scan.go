package engine

import (
	"context"
	"os"
	"path/filepath"
)

// ScanFlags is the bit field controlling directory-scan behaviour (§6).
type ScanFlags uint8

const (
	ScanUpgrade          ScanFlags = 0x01
	ScanStopAllOnUpgrade ScanFlags = 0x02
	ScanStopAllOnInstall ScanFlags = 0x04
	ScanRestartActive    ScanFlags = 0x08
)

// ScanResult reports what a scan did to each plug-in directory found.
type ScanResult struct {
	Installed []string
	Upgraded  []string
	Skipped   []string
	Errors    map[string]error
}

// Scan walks every configured directory, parses each plug-in subdirectory
// with the configured DescriptorParser, and installs (or, with ScanUpgrade,
// upgrades) each one found. A directory-open failure is an IO error that
// does not prevent other directories/plug-ins from being processed (§7).
func (e *Engine) Scan(ctx context.Context, flags ScanFlags) (ScanResult, error) {
	e.guard.lock()
	dirs := make([]string, len(e.dirs))
	copy(dirs, e.dirs)
	parser := e.parser
	e.guard.unlock()

	res := ScanResult{Errors: make(map[string]error)}
	if parser == nil {
		return res, errIO("no descriptor parser configured")
	}

	var wasActive []string
	if flags&ScanRestartActive != 0 {
		wasActive = e.StartedPlugins()
	}

	type found struct {
		dir string
		d   *Descriptor
	}
	var all []found

	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			res.Errors[dir] = errIO("reading plug-in directory %q: %v", dir, err)
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			sub := filepath.Join(dir, entry.Name())
			d, err := parser.Parse(sub)
			if err != nil {
				res.Errors[sub] = errMalformed(entry.Name(), "parsing descriptor at %q: %v", sub, err)
				continue
			}
			all = append(all, found{dir: sub, d: d})
		}
	}

	if flags&ScanStopAllOnInstall != 0 {
		e.StopAll(ctx)
	}

	for _, f := range all {
		e.guard.lock()
		existing, exists := e.plugins[f.d.ID]
		e.guard.unlock()

		if exists {
			if flags&ScanUpgrade == 0 || !isGreater(f.d.Version, existing.descriptor.Version) {
				res.Skipped = append(res.Skipped, f.d.ID)
				continue
			}
			if flags&ScanStopAllOnUpgrade != 0 {
				e.StopAll(ctx)
			}
			if err := e.Uninstall(ctx, f.d.ID); err != nil {
				res.Errors[f.dir] = err
				continue
			}
			if _, err := e.Install(f.d); err != nil {
				res.Errors[f.dir] = err
				continue
			}
			res.Upgraded = append(res.Upgraded, f.d.ID)
			continue
		}

		if _, err := e.Install(f.d); err != nil {
			res.Errors[f.dir] = err
			continue
		}
		res.Installed = append(res.Installed, f.d.ID)
	}

	if flags&ScanRestartActive != 0 {
		for _, id := range wasActive {
			e.Start(ctx, id)
		}
	}

	return res, nil
}

func isGreater(a, b Version) bool {
	return Cmp(a, b, 4) > 0
}
