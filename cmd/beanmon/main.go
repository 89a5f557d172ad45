package main

import (
	"flag"
	"fmt"
	"log"
	"reflect"
	"strings"

	gomidi "gitlab.com/gomidi/midi/v2"

	"github.com/robotalks/bean.go/pkg/l1/comm/mqtt"
	"github.com/robotalks/bean.go/pkg/l1/env"
	"github.com/robotalks/bean.go/pkg/l1/msgs"
)

var (
	mqttURL = env.Getenv(env.EnvMQTTURL, env.DefaultMQTTURL)
	filter  = "#"
)

func init() {
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
	flag.StringVar(&filter, "topic", filter, "Topic filter relative to the URL prefix.")
}

func describe(topic string, payload []byte) string {
	if strings.HasSuffix(topic, "/"+mqtt.MetaSuffix) {
		if len(payload) == 0 {
			return "offline"
		}
		return string(payload)
	}
	typed, err := msgs.DecodeTyped(payload)
	if err != nil {
		return "bad message: " + err.Error()
	}
	msg, err := typed.Decode()
	if err != nil {
		return "decode error: " + err.Error()
	}
	kind := "event"
	switch {
	case typed.IsReply():
		kind = "reply"
	case typed.IsCommand():
		kind = "command"
	}
	desc := msg.(msgs.SerializableMessage).Serializable().String()
	if ev, ok := msg.(*msgs.MidiEvent); ok {
		desc += " (" + gomidi.Message{byte(ev.Status), byte(ev.Data1), byte(ev.Data2)}.String() + ")"
	}
	return fmt.Sprintf("%s #%d [%s] %s", kind, typed.Sequence,
		reflect.Indirect(reflect.ValueOf(msg)).Type().Name(), desc)
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalln(token.Error())
	}
	defer q.Close()

	q.Sub(filter, mqtt.Handler(func(topic string, payload []byte) {
		log.Printf("%s: %s", topic, describe(topic, payload))
	}))
	<-(chan struct{})(nil)
}
