package metrickeys

const (
	Prefix = "channel."

	// Channel operations
	Send    = Prefix + "send"
	Receive = Prefix + "receive"
	Handoff = Prefix + "handoff"
	Closed  = Prefix + "closed"

	Park       = Prefix + "park"
	TimeParked = Prefix + "time_parked"

	// File-backed channels
	FileSend    = Prefix + "file.send"
	FileReceive = Prefix + "file.receive"

	// Pool
	PoolTaskSubmitted = Prefix + "pool.task.submitted"
	PoolTaskProcessed = Prefix + "pool.task.processed"
	PoolTaskPanicked  = Prefix + "pool.task.panicked"
	PoolTaskDuration  = Prefix + "pool.task.duration"

	PoolQueueDepth    = Prefix + "pool.queue.depth"
	PoolTasksInFlight = Prefix + "pool.tasks.in_flight"
)

// Tag names
const (
	// Operation that parked, "send" or "receive"
	Operation = "operation"

	// Name a pool was registered under
	PoolName = "pool"
)
