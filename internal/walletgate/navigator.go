package walletgate

// Navigator moves the session to a destination path. Calls are fire and forget.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a plain function to Navigator
type NavigatorFunc func(path string)

// Navigate calls f(path)
func (f NavigatorFunc) Navigate(path string) {
	f(path)
}
