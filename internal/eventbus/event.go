// Package eventbus is the multi-producer, multi-consumer, fire-and-forget
// notification channel shared by every component of a run (spec §4.4, §5,
// §6). Handlers must not block; the bus never blocks a producer on a slow
// consumer.
package eventbus

// Label names the lifecycle stage an Event reports on.
type Label string

const (
	Fetch            Label = "fetch"
	Diff             Label = "diff"
	Write            Label = "write"
	RecordCompleted  Label = "record-completed"
	Structure        Label = "structure"
	Done             Label = "done"
	Error            Label = "error"
)

// Event is the payload delivered to every subscriber. AssetUUID is set only
// for RecordCompleted events. Err is set for Error events and for
// RecordCompleted events that report an asset's terminal failure.
type Event struct {
	Label     Label
	AssetUUID string
	Message   string
	Err       error
}
