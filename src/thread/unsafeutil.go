package thread

import "unsafe"

func ptrAt(addr uintptr) unsafe.Pointer {
	return unsafe.Pointer(addr)
}

func ptrToUint(t *Thread) uintptr {
	return uintptr(unsafe.Pointer(t))
}

func uintToThread(addr uintptr) *Thread {
	return (*Thread)(unsafe.Pointer(addr))
}
