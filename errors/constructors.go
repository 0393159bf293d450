package errors

import "fmt"

// NiriSocket creates a niri IPC transport error
func NiriSocket(err error) *TaskbarError {
	return Wrap(err, ErrCodeNiriSocket, "niri IPC socket failure")
}

// NiriReply creates a niri reply error from the error string the compositor returned
func NiriReply(message string) *TaskbarError {
	return New(ErrCodeNiriReply, fmt.Sprintf("niri reply: %s", message))
}

// UnexpectedResponse creates a protocol error for a reply variant the caller did not ask for
func UnexpectedResponse(expected, got string) *TaskbarError {
	return New(ErrCodeUnexpectedResponse,
		fmt.Sprintf("unexpected niri response; expected %s", expected)).
		WithDetail("expected", expected).
		WithDetail("got", got)
}

// ProcUnreadable creates a lookup error for an unreadable process descriptor
func ProcUnreadable(pid int, err error) *TaskbarError {
	return Wrap(err, ErrCodeProcUnreadable,
		fmt.Sprintf("cannot read /proc/%d/stat", pid)).
		WithDetail("pid", pid)
}

// ProcMalformed creates a lookup error for a stat record with too few fields
func ProcMalformed(pid int) *TaskbarError {
	return New(ErrCodeProcMalformed,
		fmt.Sprintf("malformed /proc/%d/stat: insufficient fields", pid)).
		WithDetail("pid", pid)
}

// ProcBadPPID creates a lookup error for an unparseable parent pid field
func ProcBadPPID(pid int, field string) *TaskbarError {
	return New(ErrCodeProcBadPPID,
		fmt.Sprintf("parent PID not a valid number in /proc/%d/stat: %s", pid, field)).
		WithDetail("pid", pid).
		WithDetail("field", field)
}

// DBusConnect creates a bus transport error
func DBusConnect(err error) *TaskbarError {
	return Wrap(err, ErrCodeDBusConnect, "cannot connect to session bus")
}

// DBusMonitor creates a bus monitoring subscription error
func DBusMonitor(err error) *TaskbarError {
	return Wrap(err, ErrCodeDBusMonitor, "cannot become bus monitor")
}

// StreamClosed creates a delivery error for a closed internal channel
func StreamClosed(name string) *TaskbarError {
	return New(ErrCodeStreamClosed, fmt.Sprintf("%s stream closed", name)).
		WithDetail("stream", name)
}
