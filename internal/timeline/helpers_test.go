package timeline

import (
	"fmt"
	"strings"
)

// Line builders in the PROTON_LOG=+fsync,+microsecs layout.

func renameLine(tid, name string) string {
	return fmt.Sprintf(`0.000001:0020:%s:warn:threadname:NtSetInformationThread Thread renamed to L"%s"`, tid, name)
}

func waitLine(ts, tid, mode string, handles ...string) string {
	return fmt.Sprintf("%s:0020:%s:trace:fsync:__fsync_wait_objects Waiting for %s of %d handles: %s, alertable 0, timeout INFINITE.",
		ts, tid, mode, len(handles), strings.Join(handles, " "))
}

func wakeLine(ts, tid, handle string) string {
	return fmt.Sprintf("%s:0020:%s:trace:fsync:__fsync_wait_objects Woken up by handle %s [0].", ts, tid, handle)
}

func timeoutLine(ts, tid string) string {
	return fmt.Sprintf("%s:0020:%s:trace:fsync:__fsync_wait_objects Wait timed out.", ts, tid)
}

func setEventLine(ts, tid, handle string) string {
	return fmt.Sprintf("%s:0020:%s:trace:fsync:fsync_set_event %s.", ts, tid, handle)
}

func releaseSemLine(ts, tid, handle string) string {
	return fmt.Sprintf("%s:0020:%s:trace:fsync:fsync_release_semaphore %s, count 1, prev 0.", ts, tid, handle)
}

func readLine(ts, tid, target, length string) string {
	return fmt.Sprintf("%s:0020:%s:trace:file:NtReadFile (%s,(nil),(nil),(nil),0x22fd30,0x7fe1000,%s,(nil),(nil))", ts, tid, target, length)
}
