package publish

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	serrors "github.com/ksyq12/sitesettings/internal/errors"
	"github.com/ksyq12/sitesettings/internal/executor"
	"github.com/ksyq12/sitesettings/internal/logger"
	"github.com/ksyq12/sitesettings/internal/template"
)

const (
	dirMode  = 0755
	fileMode = 0644
)

// LocalPublisher writes settings files below a Drupal code root:
// <root>/<sid>/<sid>/sites/default
type LocalPublisher struct {
	root string
	php  string
	exec executor.CommandExecutor
}

// NewLocal creates a publisher rooted at root without php linting
func NewLocal(root string) *LocalPublisher {
	return &LocalPublisher{
		root: root,
		exec: executor.NewSystemExecutor(),
	}
}

// NewLocalWithLint creates a publisher that runs "<php> -l" on every file
// before it is moved into place
func NewLocalWithLint(root, php string, exec executor.CommandExecutor) *LocalPublisher {
	return &LocalPublisher{
		root: root,
		php:  php,
		exec: exec,
	}
}

// Name returns the publisher name
func (p *LocalPublisher) Name() string {
	return "local"
}

// Root returns the code root
func (p *LocalPublisher) Root() string {
	return p.root
}

// Dir returns the sites/default directory of sid
func (p *LocalPublisher) Dir(sid string) string {
	return filepath.Join(p.root, sid, sid, "sites", "default")
}

// Publish writes files to temp files next to their destinations, lints them
// if enabled and renames them into place in order. If a rename fails, the
// files already replaced are rolled back to their previous content.
func (p *LocalPublisher) Publish(ctx context.Context, sid string, files []File) ([]string, error) {
	if err := ValidateSID(sid); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, serrors.Validation("no files to publish for " + sid)
	}

	dir := p.Dir(sid)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return nil, serrors.WriteFailure(dir, err)
	}

	temps := make([]string, 0, len(files))
	cleanup := func() {
		for _, tmp := range temps {
			if err := os.Remove(tmp); err != nil && !os.IsNotExist(err) {
				logger.Warn("failed to remove temp file %s: %v", tmp, err)
			}
		}
	}

	for _, f := range files {
		tmp, err := writeTemp(dir, f)
		if tmp != "" {
			temps = append(temps, tmp)
		}
		if err != nil {
			cleanup()
			return nil, serrors.WriteFailure(filepath.Join(dir, f.Name), err)
		}
	}

	if p.php != "" {
		for i, tmp := range temps {
			if err := p.lint(ctx, tmp); err != nil {
				cleanup()
				return nil, serrors.WriteFailure(filepath.Join(dir, files[i].Name), err)
			}
		}
	}

	if err := ctx.Err(); err != nil {
		cleanup()
		return nil, serrors.WriteFailure(dir, err)
	}

	backups, err := backupExisting(dir, files)
	if err != nil {
		cleanup()
		return nil, serrors.WriteFailure(dir, err)
	}

	written := make([]string, 0, len(files))
	for i, tmp := range temps {
		dest := filepath.Join(dir, files[i].Name)
		if err := os.Rename(tmp, dest); err != nil {
			cleanup()
			restore(written, backups)
			return nil, serrors.WriteFailure(dest, err)
		}
		written = append(written, dest)
		logger.DebugFields("published settings file", logger.Fields{"sid": sid, "path": dest})
	}
	discard(backups)

	return written, nil
}

// backupExisting copies every regular destination file that is about to be
// replaced. The result maps destination to backup path.
func backupExisting(dir string, files []File) (map[string]string, error) {
	backups := make(map[string]string, len(files))
	for _, f := range files {
		dest := filepath.Join(dir, f.Name)
		info, err := os.Stat(dest)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		content, err := os.ReadFile(dest)
		if err != nil {
			discard(backups)
			return nil, err
		}
		tmp, err := writeTemp(dir, File{Name: f.Name, Content: content})
		if err != nil {
			if tmp != "" {
				_ = os.Remove(tmp)
			}
			discard(backups)
			return nil, err
		}
		backups[dest] = tmp
	}
	return backups, nil
}

// restore puts back the files a failed publish already replaced. Files that
// did not exist before are removed, so the directory holds the previous set.
func restore(written []string, backups map[string]string) {
	for _, dest := range written {
		if backup, ok := backups[dest]; ok {
			delete(backups, dest)
			if err := os.Rename(backup, dest); err != nil {
				logger.Warn("failed to restore %s, previous content kept in %s: %v", dest, backup, err)
			}
			continue
		}
		if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
			logger.Warn("failed to remove %s: %v", dest, err)
		}
	}
	discard(backups)
}

func discard(backups map[string]string) {
	for _, backup := range backups {
		if err := os.Remove(backup); err != nil && !os.IsNotExist(err) {
			logger.Warn("failed to remove backup %s: %v", backup, err)
		}
	}
}

func writeTemp(dir string, f File) (string, error) {
	if f.Name == "" || f.Name != filepath.Base(f.Name) || strings.HasPrefix(f.Name, ".") {
		return "", fmt.Errorf("invalid file name %q", f.Name)
	}

	tmp, err := os.CreateTemp(dir, "."+f.Name+".tmp-*")
	if err != nil {
		return "", err
	}
	name := tmp.Name()

	if _, err := tmp.Write(f.Content); err != nil {
		tmp.Close()
		return name, err
	}
	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		return name, err
	}
	if err := tmp.Close(); err != nil {
		return name, err
	}
	return name, nil
}

func (p *LocalPublisher) lint(ctx context.Context, path string) error {
	output, err := p.exec.Execute(ctx, p.php, "-l", path)
	if err != nil {
		msg := strings.TrimSpace(string(output))
		if msg == "" {
			return fmt.Errorf("php lint failed: %w", err)
		}
		return fmt.Errorf("php lint failed: %s", msg)
	}
	return nil
}

// Remove deletes the settings files of sid. The directory itself is kept.
func (p *LocalPublisher) Remove(sid string) error {
	if err := ValidateSID(sid); err != nil {
		return err
	}

	dir := p.Dir(sid)
	removed := 0
	for _, name := range template.Files() {
		path := filepath.Join(dir, name)
		if err := os.Remove(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return serrors.WriteFailure(path, err)
		}
		removed++
	}

	if removed == 0 {
		return serrors.NotFound("site", sid)
	}
	return nil
}

// List returns every site below the root with at least one settings file,
// sorted by sid
func (p *LocalPublisher) List() ([]Entry, error) {
	entries, err := os.ReadDir(p.root)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("failed to read output root: %w", err)
	}

	result := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		sid := entry.Name()
		if !entry.IsDir() || ValidateSID(sid) != nil {
			continue
		}
		present := p.present(sid)
		if len(present) == 0 {
			continue
		}
		result = append(result, Entry{SID: sid, Dir: p.Dir(sid), Files: present})
	}

	sort.Slice(result, func(i, j int) bool { return result[i].SID < result[j].SID })
	return result, nil
}

func (p *LocalPublisher) present(sid string) []string {
	dir := p.Dir(sid)
	var names []string
	for _, name := range template.Files() {
		if info, err := os.Stat(filepath.Join(dir, name)); err == nil && info.Mode().IsRegular() {
			names = append(names, name)
		}
	}
	return names
}

// Exists checks if settings.php has been published for sid
func (p *LocalPublisher) Exists(sid string) (bool, error) {
	if err := ValidateSID(sid); err != nil {
		return false, err
	}
	_, err := os.Stat(filepath.Join(p.Dir(sid), template.FileSettings))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check site %s: %w", sid, err)
	}
	return true, nil
}
