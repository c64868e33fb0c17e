package mem

import "unsafe"

func ptrOf(addr uintptr) unsafe.Pointer {
	return unsafe.Pointer(addr)
}

func unsafeSizeofHeader() uintptr {
	return unsafe.Sizeof(arenaHeader{})
}

func alignUp(v, a uintptr) uintptr {
	return (v + a - 1) &^ (a - 1)
}
