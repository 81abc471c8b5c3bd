package kafka_client

import "time"

const (
	KAFKA_TOPIC_AUDIT_REQUEST = "comment-audit-request" // batches of stored comments to audit
	KAFKA_TOPIC_AUDIT_RESULTS = "comment-audit-results" // audit reports keyed by request id
)

const (
	MAX_RETRIES  = 5
	RETRY_DELAY  = 2 * time.Second
	POLL_TIMEOUT = 500 * time.Millisecond

	SEEK_TIMEOUT_MS = 5000
)
