package arq

import "errors"

var (
	// ErrRetryExhausted reports that some fragment was transmitted MaxRetry
	// times without acknowledgment. The engine stays usable for subsequent
	// sends.
	ErrRetryExhausted = errors.New("arq: retry ceiling reached before acknowledgment")
	// ErrSendInFlight reports a second send while one message is still
	// outstanding; the engine handles one message per direction at a time.
	ErrSendInFlight = errors.New("arq: another send is in flight")
	// ErrMessageTooLarge reports a message needing more than 255 fragments.
	ErrMessageTooLarge = errors.New("arq: message exceeds fragment id space")
)
