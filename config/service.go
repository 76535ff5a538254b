package config

// ServiceConfig drives the long-running service mode.
type ServiceConfig struct {
	// PlanRequestTopic is the MQTT topic carrying incoming plan requests.
	PlanRequestTopic string `json:"plan_request_topic"`
	// DispatchOrders sends day-zero irrigation orders over MQTT after each
	// successful planning run.
	DispatchOrders bool `json:"dispatch_orders"`
	// AckTimeoutSeconds bounds the wait for each order acknowledgment.
	AckTimeoutSeconds int `json:"ack_timeout_seconds"`
	// PlanTimeoutSeconds bounds a single planning run. Zero means no limit.
	PlanTimeoutSeconds int `json:"plan_timeout_seconds"`
}

// SetDefaults applies sane defaults.
func (c *ServiceConfig) SetDefaults() {
	if c.PlanRequestTopic == "" {
		c.PlanRequestTopic = "plan/request"
	}
	if c.AckTimeoutSeconds == 0 {
		c.AckTimeoutSeconds = 5
	}
}
