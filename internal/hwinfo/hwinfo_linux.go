package hwinfo

import "golang.org/x/sys/unix"

func probe() Info {
	info := base()
	readFS(&info, "/proc", "/sys")

	var uts unix.Utsname
	if err := unix.Uname(&uts); err == nil {
		info.KernelVersion = unix.ByteSliceToString(uts.Release[:])
	}
	var si unix.Sysinfo_t
	if err := unix.Sysinfo(&si); err == nil {
		info.MemoryTotalMB = int(uint64(si.Totalram) * uint64(si.Unit) / (1 << 20))
	}
	return info
}
