package global

import (
	"context"
	"time"
)

const DefaultTimeout = 10 * time.Second

func GetDefaultTimer() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), DefaultTimeout)
}
