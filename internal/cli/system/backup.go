package system

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/julianstephens/sleepwatch/internal/backup"
	"github.com/julianstephens/sleepwatch/internal/cli"
	"github.com/julianstephens/sleepwatch/internal/storage/sqlite"
)

type BackupCmd struct {
	List    BackupListCmd    `cmd:"" help:"List snapshots of the local state." default:"1"`
	Create  BackupCreateCmd  `cmd:"" help:"Snapshot the local state now."`
	Restore BackupRestoreCmd `cmd:"" help:"Replace the local state with a snapshot."`
}

func manager(ctx *cli.Context) (*backup.Manager, error) {
	if _, ok := ctx.Store.(*sqlite.Store); !ok {
		return nil, errors.New("snapshots are only available for the sqlite store")
	}
	return backup.NewManager(ctx.Store.GetConfigPath()), nil
}

type BackupListCmd struct{}

func (cmd *BackupListCmd) Run(ctx *cli.Context) error {
	mgr, err := manager(ctx)
	if err != nil {
		return err
	}
	snaps, err := mgr.List()
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		ctx.Printf("No snapshots in %s\n", mgr.Dir())
		return nil
	}
	for _, s := range snaps {
		ctx.Printf("%s  %s  %d bytes\n", s.Timestamp.Format("2006-01-02 15:04:05"), filepath.Base(s.Path), s.Size)
	}
	return nil
}

type BackupCreateCmd struct{}

func (cmd *BackupCreateCmd) Run(ctx *cli.Context) error {
	mgr, err := manager(ctx)
	if err != nil {
		return err
	}
	path, err := mgr.Create()
	if err != nil {
		return err
	}
	ctx.Printf("✓ Snapshot saved to %s\n", path)
	return nil
}

type BackupRestoreCmd struct {
	Name string `arg:"" help:"Snapshot file name or path, as shown by 'backup list'."`
}

func (cmd *BackupRestoreCmd) Run(ctx *cli.Context) error {
	mgr, err := manager(ctx)
	if err != nil {
		return err
	}
	path := cmd.Name
	if filepath.Base(path) == path {
		path = filepath.Join(mgr.Dir(), path)
	}

	if err := ctx.Store.Close(); err != nil {
		return fmt.Errorf("failed to close local state: %w", err)
	}
	previous, err := mgr.Restore(path)
	if err != nil {
		return err
	}
	if previous != "" {
		ctx.Printf("Saved the replaced state to %s\n", filepath.Base(previous))
	}
	ctx.Printf("✓ Restored local state from %s\n", filepath.Base(path))
	return nil
}
