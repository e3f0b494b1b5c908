package askpass

import (
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMode struct {
	echo   bool
	echoNL bool
}

func (m fakeMode) withoutEcho() termMode {
	m.echo = false
	m.echoNL = true
	return m
}

// fakeDriver stands in for the terminal. It counts mode calls and records
// the mode in force while the password is being read.
type fakeDriver struct {
	src      io.Reader
	terminal bool
	mode     fakeMode

	openErr error
	getErr  error
	// setErr is called with the 1-based number of the setMode call.
	setErr func(call int) error

	openedTTY  bool
	closed     bool
	getCalls   int
	setCalls   int
	modeAtRead []fakeMode
	echoed     int
	// reads keeps every buffer the password was read into.
	reads [][]byte
}

func newFakeTerminal(src string) *fakeDriver {
	return &fakeDriver{
		src:      strings.NewReader(src),
		terminal: true,
		mode:     fakeMode{echo: true},
	}
}

func (f *fakeDriver) Read(p []byte) (int, error) {
	f.modeAtRead = append(f.modeAtRead, f.mode)
	f.reads = append(f.reads, p)
	return f.src.Read(p)
}

func (f *fakeDriver) Close() error {
	f.closed = true
	return nil
}

func (f *fakeDriver) open(openTTY bool) (*input, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	f.openedTTY = openTTY
	in := newInput(3, f, f)
	in.echoNewline = func() error {
		f.echoed++
		return nil
	}
	return in, nil
}

func (f *fakeDriver) isTerminal(fd uintptr) bool {
	return f.terminal
}

func (f *fakeDriver) getMode(fd uintptr) (termMode, error) {
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.mode, nil
}

func (f *fakeDriver) setMode(fd uintptr, mode termMode) error {
	f.setCalls++
	if f.setErr != nil {
		if err := f.setErr(f.setCalls); err != nil {
			return err
		}
	}
	f.mode = mode.(fakeMode)
	return nil
}

func failOnCall(n int, err error) func(int) error {
	return func(call int) error {
		if call == n {
			return err
		}
		return nil
	}
}

func TestReadFromNonTerminalMakesNoModeCalls(t *testing.T) {
	drv := newFakeTerminal("piped secret\n")
	drv.terminal = false

	password, err := readFrom(drv, false, &secret{})
	require.NoError(t, err)
	assert.Equal(t, "piped secret", password)
	assert.Zero(t, drv.getCalls)
	assert.Zero(t, drv.setCalls)
	assert.Zero(t, drv.echoed)
	assert.False(t, drv.openedTTY)
	assert.True(t, drv.closed)
}

func TestReadFromTerminal(t *testing.T) {
	drv := newFakeTerminal("hunter2\r\n")
	before := drv.mode

	password, err := readFrom(drv, true, &secret{})
	require.NoError(t, err)
	assert.Equal(t, "hunter2", password)
	assert.True(t, drv.openedTTY)

	assert.Equal(t, 1, drv.getCalls)
	assert.Equal(t, 2, drv.setCalls)
	assert.Equal(t, before, drv.mode, "terminal mode not restored")
	require.NotEmpty(t, drv.modeAtRead)
	for _, m := range drv.modeAtRead {
		assert.Equal(t, fakeMode{echo: false, echoNL: true}, m)
	}
	assert.Equal(t, 1, drv.echoed)
	assert.True(t, drv.closed)
}

func TestReadFromTerminalEmpty(t *testing.T) {
	drv := newFakeTerminal("")
	password, err := readFrom(drv, true, &secret{})
	require.NoError(t, err)
	assert.Equal(t, "", password)
	assert.Equal(t, fakeMode{echo: true}, drv.mode)
}

func TestReadFromOpenError(t *testing.T) {
	openErr := errors.New("open /dev/tty: no such device or address")
	drv := newFakeTerminal("")
	drv.openErr = openErr

	_, err := readFrom(drv, true, &secret{})
	assert.Equal(t, openErr, err)
	assert.Zero(t, drv.getCalls)
	assert.Zero(t, drv.setCalls)
}

func TestReadFromGetModeError(t *testing.T) {
	getErr := errors.New("inappropriate ioctl for device")
	drv := newFakeTerminal("hunter2\n")
	drv.getErr = getErr

	_, err := readFrom(drv, true, &secret{})
	assert.Equal(t, getErr, err)
	assert.Zero(t, drv.setCalls)
	assert.Empty(t, drv.modeAtRead, "read without echo disabled")
	assert.True(t, drv.closed)
}

func TestReadFromDisableEchoError(t *testing.T) {
	setErr := errors.New("operation not permitted")
	drv := newFakeTerminal("hunter2\n")
	drv.setErr = failOnCall(1, setErr)

	_, err := readFrom(drv, true, &secret{})
	assert.Equal(t, setErr, err)
	assert.Equal(t, 1, drv.setCalls)
	assert.Empty(t, drv.modeAtRead, "read without echo disabled")
}

func TestReadFromReadErrorRestoresAndWipes(t *testing.T) {
	drv := newFakeTerminal("")
	drv.src = io.MultiReader(strings.NewReader("hunt"), iotest.ErrReader(errBrokenPipe))
	s := &secret{}

	_, err := readFrom(drv, true, s)
	assert.Equal(t, errBrokenPipe, err)
	assert.Equal(t, 2, drv.setCalls)
	assert.Equal(t, fakeMode{echo: true}, drv.mode, "terminal mode not restored")
	assert.Zero(t, drv.echoed)
	assertZeroed(t, s)
}

func TestReadFromRestoreErrorWinsOverReadError(t *testing.T) {
	restoreErr := errors.New("input/output error")
	drv := newFakeTerminal("")
	drv.src = io.MultiReader(strings.NewReader("hunt"), iotest.ErrReader(errBrokenPipe))
	drv.setErr = failOnCall(2, restoreErr)
	s := &secret{}

	_, err := readFrom(drv, true, s)
	assert.Equal(t, restoreErr, err)
	assertZeroed(t, s)
}

func TestReadFromRestoreErrorWipes(t *testing.T) {
	restoreErr := errors.New("input/output error")
	drv := newFakeTerminal("hunter2\n")
	drv.setErr = failOnCall(2, restoreErr)
	s := &secret{}

	password, err := readFrom(drv, true, s)
	assert.Equal(t, restoreErr, err)
	assert.Empty(t, password)
	assert.Zero(t, drv.echoed)
	assertZeroed(t, s)
}

func TestReadFromNonTerminalReadErrorWipes(t *testing.T) {
	drv := newFakeTerminal("")
	drv.terminal = false
	drv.src = io.MultiReader(strings.NewReader("hunter2"), iotest.ErrReader(errBrokenPipe))
	s := &secret{}

	_, err := readFrom(drv, false, s)
	assert.Equal(t, errBrokenPipe, err)
	assert.Zero(t, drv.setCalls)
	assertZeroed(t, s)
}

func TestReadFromEchoNewlineErrorWipes(t *testing.T) {
	echoErr := errors.New("write CONOUT$: the handle is invalid")
	drv := newFakeTerminal("hunter2\r\n")
	s := &secret{}

	in, err := drv.open(true)
	require.NoError(t, err)
	echoing := &echoFailDriver{fakeDriver: drv, in: in, err: echoErr}

	_, err = readFrom(echoing, true, s)
	assert.Equal(t, echoErr, err)
	assert.Equal(t, fakeMode{echo: true}, drv.mode, "terminal mode not restored")
	assertZeroed(t, s)
}

// echoFailDriver hands out an input whose newline echo fails.
type echoFailDriver struct {
	*fakeDriver
	in  *input
	err error
}

func (d *echoFailDriver) open(bool) (*input, error) {
	d.in.echoNewline = func() error { return d.err }
	return d.in, nil
}

func assertReadBuffersZeroed(t *testing.T, reads [][]byte) {
	t.Helper()
	require.NotEmpty(t, reads, "nothing was read")
	for n, b := range reads {
		for i, c := range b {
			if c != 0 {
				t.Fatalf("byte %d of read buffer %d is %q, expected 0", i, n, c)
			}
		}
	}
}

func TestReadFromWipesReadBufferOnError(t *testing.T) {
	drv := newFakeTerminal("")
	drv.src = io.MultiReader(strings.NewReader("hunter2"), iotest.ErrReader(errBrokenPipe))

	_, err := readFrom(drv, true, &secret{})
	assert.Equal(t, errBrokenPipe, err)
	assertReadBuffersZeroed(t, drv.reads)
}

func TestReadFromWipesReadBufferOnSuccess(t *testing.T) {
	drv := newFakeTerminal("hunter2\nleft over\n")

	password, err := readFrom(drv, true, &secret{})
	require.NoError(t, err)
	assert.Equal(t, "hunter2", password)
	assertReadBuffersZeroed(t, drv.reads)
}

func TestReadFromNonTerminalWipesReadBuffer(t *testing.T) {
	drv := newFakeTerminal("")
	drv.terminal = false
	drv.src = io.MultiReader(strings.NewReader("hunter2"), iotest.ErrReader(errBrokenPipe))

	_, err := readFrom(drv, false, &secret{})
	assert.Equal(t, errBrokenPipe, err)
	assertReadBuffersZeroed(t, drv.reads)
}

func TestReadEchoedFrom(t *testing.T) {
	drv := newFakeTerminal("yes\r\n")
	s := &secret{}

	answer, err := readEchoedFrom(drv, s)
	require.NoError(t, err)
	assert.Equal(t, "yes", answer)
	assert.True(t, drv.openedTTY)
	assert.Zero(t, drv.getCalls)
	assert.Zero(t, drv.setCalls)
	assert.Zero(t, drv.echoed)
	assert.True(t, drv.closed)
	assertReadBuffersZeroed(t, drv.reads)
}

func TestReadEchoedFromError(t *testing.T) {
	drv := newFakeTerminal("")
	drv.src = io.MultiReader(strings.NewReader("partial"), iotest.ErrReader(errBrokenPipe))
	s := &secret{}

	_, err := readEchoedFrom(drv, s)
	assert.Equal(t, errBrokenPipe, err)
	assertZeroed(t, s)
	assertReadBuffersZeroed(t, drv.reads)

	openErr := errors.New("open /dev/tty: no such device or address")
	drv = newFakeTerminal("")
	drv.openErr = openErr
	_, err = readEchoedFrom(drv, &secret{})
	assert.Equal(t, openErr, err)
}
