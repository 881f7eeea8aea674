package enums

// Broadcast channel topics. Position, resize and rotate carry drag session
// tags so receivers can filter their own in-flight messages; delete is a
// plain removal hint.
const (
	TOPIC_POSITION = "position"
	TOPIC_RESIZE   = "resize"
	TOPIC_ROTATE   = "rotate"
	TOPIC_DELETE   = "delete"
)

// Change feed actions emitted by the durable store after each write.
// Namespaced apart from the broadcast topics so the pushed event name tells a
// feed removal apart from a broadcast delete hint.
const (
	FEED_ACTION_INSERT = "feed_insert"
	FEED_ACTION_UPDATE = "feed_update"
	FEED_ACTION_DELETE = "feed_delete"
)
