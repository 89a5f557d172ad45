package mqtt

import "github.com/robotalks/bean.go/pkg/l1"

// Topics of a controller, relative to the topic prefix:
//
//	TYPE/ID/meta  retained ControllerMeta in JSON, empty when offline
//	TYPE/ID/cmd   commands from clients
//	TYPE/ID/msg   replies and events from the controller
const (
	MetaSuffix    = "meta"
	CommandSuffix = "cmd"
	MessageSuffix = "msg"
)

// DiscoverPattern matches the meta topics of all controllers.
const DiscoverPattern = "+/+/" + MetaSuffix

// MetaTopic returns the meta topic of a controller.
func MetaTopic(ref l1.ControllerRef) string {
	return ref.Name() + "/" + MetaSuffix
}

// CommandTopic returns the command topic of a controller.
func CommandTopic(ref l1.ControllerRef) string {
	return ref.Name() + "/" + CommandSuffix
}

// MessageTopic returns the message topic of a controller.
func MessageTopic(ref l1.ControllerRef) string {
	return ref.Name() + "/" + MessageSuffix
}
