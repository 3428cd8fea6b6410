package feeder

import "github.com/prometheus/client_golang/prometheus"

// metrics holds the feeder's prometheus counters.
type metrics struct {
	requestsDecoded   prometheus.Counter
	submissionsOK     prometheus.Counter
	submissionsFailed prometheus.Counter
	malformedEvents   prometheus.Counter
	beaconRounds      prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requestsDecoded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feeder_requests_decoded_total",
			Help: "New update requests decoded from the event stream.",
		}),
		submissionsOK: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feeder_submissions_total",
			Help: "Resolution messages finalized on chain.",
		}),
		submissionsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feeder_submission_failures_total",
			Help: "Resolution attempts that failed at any stage.",
		}),
		malformedEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feeder_malformed_events_total",
			Help: "Event payloads discarded as malformed.",
		}),
		beaconRounds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feeder_beacon_rounds_total",
			Help: "Beacon rounds accepted for publication.",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.requestsDecoded,
			m.submissionsOK,
			m.submissionsFailed,
			m.malformedEvents,
			m.beaconRounds,
		)
	}
	return m
}
