package provisioning

import "log"

// Observer receives progress output from the provisioner.
type Observer interface {
	Printf(format string, v ...interface{})
}

// consoleObserver logs through the standard logger.
type consoleObserver struct{}

func (consoleObserver) Printf(format string, v ...interface{}) {
	log.Printf(format, v...)
}

// NewConsoleObserver returns an Observer backed by the standard logger.
func NewConsoleObserver() Observer {
	return consoleObserver{}
}
