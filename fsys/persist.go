package fsys

import (
	"fmt"
	"os"

	"github.com/chzyer/logex"

	"github.com/keks/ldiskfs/ldisk"
)

// RestoreStatus tells how Restore mounted a disk.
type RestoreStatus int

// The values are the status codes printed by the command driver.
const (
	RestoreFailed RestoreStatus = -1
	Restored      RestoreStatus = 0
	Initialized   RestoreStatus = 1
)

func (st RestoreStatus) String() string {
	switch st {
	case Restored:
		return "restored"
	case Initialized:
		return "initialized"
	default:
		return "failed"
	}
}

// Restore mounts the disk image at path. If there is no file at path, the
// disk is initialized instead. On failure the current disk stays mounted.
func (fs *FileSystem) Restore(path string) (RestoreStatus, error) {
	fs.l.Lock()
	defer fs.l.Unlock()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := fs.init(); err != nil {
			return RestoreFailed, err
		}

		logex.Infof("no image at %s, disk initialized, mount %s", path, fs.id)
		return Initialized, nil
	}

	d, err := ldisk.Load(path)
	if err != nil {
		logex.Warn(fmt.Sprintf("restore %s: %v", path, err))
		return RestoreFailed, err
	}

	var (
		oldID   = fs.id
		oldDisk = fs.disk
		oldOFT  = fs.oft
	)

	fs.mount(d)
	if err := fs.openDir(); err != nil {
		fs.mount(oldDisk)
		fs.id, fs.oft = oldID, oldOFT

		logex.Warn(fmt.Sprintf("restore %s: %v", path, err))
		return RestoreFailed, err
	}

	logex.Infof("disk restored from %s, mount %s", path, fs.id)
	return Restored, nil
}

// Save closes every open file and writes the disk image to path. The
// directory is reopened afterwards; other files stay closed.
func (fs *FileSystem) Save(path string) error {
	fs.l.Lock()
	defer fs.l.Unlock()

	var err error
	for i := range fs.oft {
		if !fs.oft[i].inUse() {
			continue
		}

		if rerr := fs.release(&fs.oft[i]); err == nil {
			err = rerr
		}
	}

	if err == nil {
		err = ldisk.Save(fs.disk, path)
	}

	if oerr := fs.openDir(); err == nil {
		err = oerr
	}

	if err != nil {
		logex.Warn(fmt.Sprintf("save %s, mount %s: %v", path, fs.id, err))
		return err
	}

	logex.Infof("disk saved to %s, mount %s", path, fs.id)
	return nil
}
