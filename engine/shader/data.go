package shader

import (
	"log"
)

// Program is an opaque handle to a compiled shader program variant. The
// backend resolves it to real pipeline state; this package only routes it.
type Program interface {
	// Name returns the program's identifier for logging and lookups.
	//
	// Returns:
	//   - string: the program name
	Name() string
}

// Data is a reference-counted block of shader uniform state: macro flags
// (with optional integer values) plus named float buffers. Scenes, cameras,
// and renderers each own one; the light registry and render pipeline write
// into them every frame.
type Data interface {
	// Macros returns the data block's macro set. The returned set is live;
	// mutations through EnableMacro/DisableMacro are visible in it.
	//
	// Returns:
	//   - *MacroSet: the live macro set
	Macros() *MacroSet

	// EnableMacro turns a macro on by name.
	//
	// Parameters:
	//   - name: the macro name
	EnableMacro(name string)

	// EnableMacroValue turns a macro on by name and attaches an integer
	// value to it (e.g. a per-type light count).
	//
	// Parameters:
	//   - name: the macro name
	//   - value: the value carried by the macro
	EnableMacroValue(name string, value int)

	// DisableMacro turns a macro off and drops any attached value.
	//
	// Parameters:
	//   - name: the macro name
	DisableMacro(name string)

	// HasMacro reports whether a macro is enabled.
	//
	// Parameters:
	//   - name: the macro name
	//
	// Returns:
	//   - bool: true if enabled
	HasMacro(name string) bool

	// MacroValue returns the value attached to an enabled macro, or zero
	// when the macro is disabled or carries no value.
	//
	// Parameters:
	//   - name: the macro name
	//
	// Returns:
	//   - int: the attached value
	MacroValue(name string) int

	// SetBuffer stores a named float buffer. The data block keeps the slice;
	// callers must not mutate it afterwards.
	//
	// Parameters:
	//   - name: the buffer name as referenced by shaders
	//   - values: the buffer contents
	SetBuffer(name string, values []float32)

	// Buffer returns a previously stored buffer, or nil.
	//
	// Parameters:
	//   - name: the buffer name
	//
	// Returns:
	//   - []float32: the stored buffer or nil
	Buffer(name string) []float32

	// SetVector3 stores a three-component buffer under the given name.
	//
	// Parameters:
	//   - name: the buffer name
	//   - v: the vector value
	SetVector3(name string, v [3]float32)

	// SetFloat stores a single-component buffer under the given name.
	//
	// Parameters:
	//   - name: the buffer name
	//   - v: the value
	SetFloat(name string, v float32)

	// AddRef increments the reference count.
	//
	// Returns:
	//   - int: the new reference count
	AddRef() int

	// Release decrements the reference count and destroys the block's
	// contents when it reaches zero. Using a destroyed block is a
	// programming error.
	//
	// Returns:
	//   - int: the new reference count
	Release() int

	// Destroyed reports whether the block has been released to zero.
	//
	// Returns:
	//   - bool: true if destroyed
	Destroyed() bool
}

// dataImpl is the implementation of the Data interface.
type dataImpl struct {
	macros    MacroSet
	values    map[Macro]int
	buffers   map[string][]float32
	refCount  int
	destroyed bool
}

var _ Data = &dataImpl{}

// NewData creates an empty shader data block with a reference count of one.
//
// Returns:
//   - Data: the new data block
func NewData() Data {
	return &dataImpl{
		values:   make(map[Macro]int),
		buffers:  make(map[string][]float32),
		refCount: 1,
	}
}

func (d *dataImpl) Macros() *MacroSet {
	return &d.macros
}

func (d *dataImpl) EnableMacro(name string) {
	d.macros.Add(DeclareMacro(name))
}

func (d *dataImpl) EnableMacroValue(name string, value int) {
	m := DeclareMacro(name)
	d.macros.Add(m)
	d.values[m] = value
}

func (d *dataImpl) DisableMacro(name string) {
	m := DeclareMacro(name)
	d.macros.Remove(m)
	delete(d.values, m)
}

func (d *dataImpl) HasMacro(name string) bool {
	return d.macros.Has(DeclareMacro(name))
}

func (d *dataImpl) MacroValue(name string) int {
	return d.values[DeclareMacro(name)]
}

func (d *dataImpl) SetBuffer(name string, values []float32) {
	d.buffers[name] = values
}

func (d *dataImpl) Buffer(name string) []float32 {
	return d.buffers[name]
}

func (d *dataImpl) SetVector3(name string, v [3]float32) {
	d.buffers[name] = []float32{v[0], v[1], v[2]}
}

func (d *dataImpl) SetFloat(name string, v float32) {
	d.buffers[name] = []float32{v}
}

func (d *dataImpl) AddRef() int {
	d.refCount++
	return d.refCount
}

func (d *dataImpl) Release() int {
	if d.destroyed {
		log.Printf("[Shader] release on destroyed data block; ignoring")
		return 0
	}
	d.refCount--
	if d.refCount <= 0 {
		d.buffers = nil
		d.values = nil
		d.macros.Clear()
		d.destroyed = true
		return 0
	}
	return d.refCount
}

func (d *dataImpl) Destroyed() bool {
	return d.destroyed
}
