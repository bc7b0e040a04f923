//go:build !linux

package beacon

func raisePriority() error {
	return nil
}
