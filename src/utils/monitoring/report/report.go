package report

type Report struct {
	Run            *RunReport            `json:"run,omitempty"`
	Api            *ApiReport            `json:"api,omitempty"`
	Processor      *ProcessorReport      `json:"processor,omitempty"`
	Streamer       *StreamerReport       `json:"streamer,omitempty"`
	RedisPublisher *RedisPublisherReport `json:"redis_publisher,omitempty"`
}
