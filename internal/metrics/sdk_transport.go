package metrics

import (
	"net/http"
	"strconv"
	"time"
)

// RequestWatcher is a RoundTripper that reports request timings for outbound
// SDK clients. The method label comes from the request "alias" header so
// different endpoints of the same client stay distinguishable.
type RequestWatcher struct {
	name string
}

func NewRequestWatcher(name string) *RequestWatcher {
	return &RequestWatcher{
		name: name,
	}
}

func (m *RequestWatcher) RoundTrip(r *http.Request) (*http.Response, error) {
	method := r.Header.Get("alias")
	if method == "" {
		method = r.Method
	}

	var err error
	defer func(start time.Time) {
		CollectRequestsMetric(m.name, method, err, start)
	}(time.Now())

	resp, err := http.DefaultTransport.RoundTrip(r)
	if err != nil {
		return nil, err
	}

	if data, ok := resp.Header["Ratelimit-Remaining"]; ok && len(data) > 0 {
		if val, err := strconv.ParseFloat(data[0], 64); err == nil {
			CollectKeyState(m.name, "remaining_value", val)
		}
	}

	return resp, nil
}
