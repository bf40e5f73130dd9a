package linux

import "fmt"

// KDMode is the virtual console mode reported by KDGETMODE.
type KDMode int

const (
	KDText     KDMode = 0x0
	KDGraphics KDMode = 0x1
)

func (k *KDMode) String() string {
	if k == nil {
		return `<nil>`
	}
	switch *k {
	case 0x0:
		return `KD_TEXT`
	case 0x1:
		return `KD_GRAPHICS`
	case 0x2:
		return `KD_TEXT0`
	case 0x3:
		return `KD_TEXT1`
	}
	if *k > 0 {
		return fmt.Sprintf(`0x%x`, int(*k))
	} else {
		return fmt.Sprintf(`-0x%x`, -int(*k))
	}
}
