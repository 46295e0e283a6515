//go:build !linux

package hwinfo

func probe() Info {
	return base()
}
