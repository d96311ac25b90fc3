package transport

import "time"

func (r *Receiver) SetNow(now func() time.Time) { r.now = now }
