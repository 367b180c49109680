package obs

import (
	"context"
	"log"
	"time"
)

type ctxKey string

const (
	RequestIDKey ctxKey = "req_id"
	TripIDKey    ctxKey = "trip_id"
)

// Time logs the duration of op once the returned func is called with the
// operation's error.
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	reqID, _ := ctx.Value(RequestIDKey).(string)
	tripID, _ := ctx.Value(TripIDKey).(string)

	return func(errp *error) {
		dur := time.Since(start)

		if errp != nil && *errp != nil {
			log.Printf("req_id=%s trip=%s op=%s dur=%dms err=%v", reqID, tripID, name, dur.Milliseconds(), *errp)
			return
		}
		log.Printf("req_id=%s trip=%s op=%s dur=%dms", reqID, tripID, name, dur.Milliseconds())
	}
}
