package ccdb

import "fmt"

// DirectoryHandle is a resolved directory: cheap to copy, backed by the
// owning DB's metadata caches.
type DirectoryHandle struct {
	db   *DB
	meta DirectoryMeta
}

// Meta returns the directory's raw metadata row.
func (d DirectoryHandle) Meta() DirectoryMeta { return d.meta }

// FullPath returns the directory's absolute path.
func (d DirectoryHandle) FullPath() string {
	if d.meta.ID == 0 {
		return "/"
	}
	d.db.mu.RLock()
	defer d.db.mu.RUnlock()
	return buildDirPath(d.db.directoryByID, d.meta)
}

// Parent returns the handle to the containing directory, or false at root.
func (d DirectoryHandle) Parent() (DirectoryHandle, bool) {
	if d.meta.ID == 0 {
		return DirectoryHandle{}, false
	}
	d.db.mu.RLock()
	parent, ok := d.db.directoryByID[d.meta.ParentID]
	d.db.mu.RUnlock()
	if !ok {
		return DirectoryHandle{}, false
	}
	return DirectoryHandle{db: d.db, meta: parent}, true
}

// Dirs lists the immediate child directories, ordered by name.
func (d DirectoryHandle) Dirs() []DirectoryHandle {
	d.db.mu.RLock()
	defer d.db.mu.RUnlock()
	var out []DirectoryHandle
	for _, child := range d.db.directoryByID {
		if child.ParentID == d.meta.ID && child.ID != d.meta.ID {
			out = append(out, DirectoryHandle{db: d.db, meta: child})
		}
	}
	sortDirsByName(out)
	return out
}

func sortDirsByName(dirs []DirectoryHandle) {
	for i := 1; i < len(dirs); i++ {
		for j := i; j > 0 && dirs[j].meta.Name < dirs[j-1].meta.Name; j-- {
			dirs[j], dirs[j-1] = dirs[j-1], dirs[j]
		}
	}
}

// Tables lists the type tables directly under this directory, ordered by
// name.
func (d DirectoryHandle) Tables() []TypeTableHandle {
	d.db.mu.RLock()
	defer d.db.mu.RUnlock()
	var out []TypeTableHandle
	for _, t := range d.db.tableByID {
		if t.DirectoryID == d.meta.ID {
			out = append(out, TypeTableHandle{db: d.db, dir: d.meta, meta: t})
		}
	}
	sortTablesByName(out)
	return out
}

func sortTablesByName(tables []TypeTableHandle) {
	for i := 1; i < len(tables); i++ {
		for j := i; j > 0 && tables[j].meta.Name < tables[j-1].meta.Name; j-- {
			tables[j], tables[j-1] = tables[j-1], tables[j]
		}
	}
}

// Dir resolves a child path (may contain several '/'-separated segments)
// relative to this directory.
func (d DirectoryHandle) Dir(path string) (DirectoryHandle, error) {
	norm := normalizePath(d.FullPath(), path)
	return d.db.Dir(norm)
}

// Table resolves a table by name directly under this directory.
func (d DirectoryHandle) Table(name string) (TypeTableHandle, error) {
	d.db.mu.RLock()
	id, ok := d.db.tableByDirName[tableKey{directoryID: d.meta.ID, name: name}]
	var meta TypeTableMeta
	if ok {
		meta, ok = d.db.tableByID[id]
	}
	d.db.mu.RUnlock()
	if !ok {
		return TypeTableHandle{}, fmt.Errorf("%w: %s/%s", ErrTableNotFound, d.FullPath(), name)
	}
	return TypeTableHandle{db: d.db, dir: d.meta, meta: meta}, nil
}
