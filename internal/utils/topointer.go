package utils

func Float32ToPointer(f float32) *float32 {
	return &f
}
