//go:build linux

package shm

import (
	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

const shmAccess = 0o600

func (m *Memory) Attach() error {
	if m.data != nil {
		return nil
	}
	if m.bytes == 0 {
		return errors.New("shm: attach zero sized memory")
	}

	id, err := unix.SysvShmGet(unix.IPC_PRIVATE, int(m.bytes), unix.IPC_CREAT|shmAccess)
	if err != nil {
		return errors.Wrapf(err, "shm: get %d bytes", m.bytes)
	}

	data, err := unix.SysvShmAttach(id, 0, 0)
	if err != nil {
		_, _ = unix.SysvShmCtl(id, unix.IPC_RMID, nil)
		return errors.Wrapf(err, "shm: attach segment %d", id)
	}

	// segment is destroyed by the kernel once the last attach goes away
	if _, err = unix.SysvShmCtl(id, unix.IPC_RMID, nil); err != nil {
		_ = unix.SysvShmDetach(data)
		return errors.Wrapf(err, "shm: mark segment %d removed", id)
	}

	m.shmid = id
	m.data = data[:m.bytes]
	return nil
}

func (m *Memory) Detach() (err error) {
	if m.data != nil {
		err = unix.SysvShmDetach(m.data)
		m.data = nil
		m.shmid = -1
	}
	return
}
