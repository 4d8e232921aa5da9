package path

// Inode is the subset of an inode cache entry that path resolution
// needs: enough to walk into a directory without the path package
// knowing anything about on-disk layout. internal/fs/inode supplies
// the concrete implementation; it is injected here (rather than
// imported directly) to avoid a path<->inode import cycle, the same
// late-bound pattern used for lock.waiter and cpu.SetLapicIDFunc.
type Inode interface {
	// Lock locks the inode's body, reading it in from disk on first
	// use if necessary.
	Lock()
	// Unlock releases the body lock taken by Lock.
	Unlock()
	// IsDir reports whether the (locked) inode is a directory.
	IsDir() bool
	// DirLookup scans a (locked) directory's entries for name,
	// returning the referenced inode on a match.
	DirLookup(name string) (Inode, bool)
}

// Resolver supplies the two starting points name_x needs: the root of
// the filesystem, and the calling process's current working
// directory.
type Resolver interface {
	Root() Inode
	Cwd() Inode
}

// NameX walks p one element at a time starting from the root (if p
// begins with "/") or the caller's cwd, following spec §4.9's name_x.
//
// If nameiparent is true, resolution stops one element short: it
// returns the parent directory of p's final element along with that
// element's name, instead of resolving all the way to the leaf. This
// is what callers creating or unlinking a path need (they must hold
// the parent locked to modify its directory entries).
//
// ok is false if any element along the way doesn't exist, or a
// non-final element isn't a directory.
func NameX(r Resolver, p string, nameiparent bool) (ip Inode, elem string, ok bool) {
	if len(p) > 0 && p[0] == '/' {
		ip = r.Root()
	} else {
		ip = r.Cwd()
	}

	first, rest := p, ""
	for {
		var hadFirst bool
		first, rest, hadFirst = SplitFirst(first)
		if !hadFirst {
			break
		}

		ip.Lock()
		if !ip.IsDir() {
			ip.Unlock()
			return nil, "", false
		}
		if nameiparent && rest == "" {
			ip.Unlock()
			return ip, first, true
		}
		next, found := ip.DirLookup(first)
		ip.Unlock()
		if !found {
			return nil, "", false
		}
		ip = next
		first = rest
	}

	if nameiparent {
		// Path had no elements at all (e.g. "/"): there is no parent
		// to return.
		return nil, "", false
	}
	return ip, "", true
}

// FromName resolves p to its final inode (spec §4.9's from_name:
// name_x with nameiparent = false).
func FromName(r Resolver, p string) (Inode, bool) {
	ip, _, ok := NameX(r, p, false)
	return ip, ok
}
