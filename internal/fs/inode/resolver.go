package inode

import (
	"novakernel/internal/path"
	"novakernel/internal/proc"
)

// Resolver adapts a running process to internal/path.Resolver, so
// NameX can start from either the filesystem root or that process's
// current working directory.
type Resolver struct {
	Proc *proc.Proc
}

// Root returns the filesystem root inode.
func (r Resolver) Root() path.Inode { return Get(RootDev, RootIno) }

// Cwd returns the resolver's process's current working directory,
// falling back to the root if the process has none set yet (true only
// very early in UserInit, before the first cwd assignment).
func (r Resolver) Cwd() path.Inode {
	if r.Proc == nil {
		return r.Root()
	}
	if ip, ok := r.Proc.Cwd().(*Inode); ok && ip != nil {
		return ip
	}
	return r.Root()
}
