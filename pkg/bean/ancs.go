package bean

import (
	"encoding/binary"
)

// AncsSourceMessageSize is the size of a notification source message.
const AncsSourceMessageSize = 8

// serialBufferSize bounds a detail request with its response.
const serialBufferSize = 64

// AncsSourceMessage is a notification reported by the ANCS client.
type AncsSourceMessage struct {
	EventID         byte
	EventFlags      byte
	CategoryID      byte
	CategoryCount   byte
	NotificationUID uint32
}

// NotiAttrID selects a notification attribute.
type NotiAttrID byte

// Notification attributes
const (
	NotiAttrAppIdentifier NotiAttrID = iota
	NotiAttrTitle
	NotiAttrSubtitle
	NotiAttrMessage
	NotiAttrMessageSize
	NotiAttrDate
	NotiAttrPositiveActionLabel
	NotiAttrNegativeActionLabel
)

const (
	ancsCmdGetNotiAttrs  = 0
	ancsCmdPerformAction = 2
)

// AncsAvailable returns the number of pending notifications.
func (b *Bean) AncsAvailable() int {
	n, _ := b.Serial.AncsAvailable()
	return n
}

// ReadAncs reads up to max bytes of pending source messages.
func (b *Bean) ReadAncs(max int) []byte {
	data, _ := b.Serial.ReadAncs(max)
	return data
}

// ParseAncs reads up to max pending source messages.
func (b *Bean) ParseAncs(max int) []AncsSourceMessage {
	data := b.ReadAncs(max * AncsSourceMessageSize)
	msgs := make([]AncsSourceMessage, 0, len(data)/AncsSourceMessageSize)
	for ; len(data) >= AncsSourceMessageSize; data = data[AncsSourceMessageSize:] {
		msgs = append(msgs, AncsSourceMessage{
			EventID:         data[0],
			EventFlags:      data[1],
			CategoryID:      data[2],
			CategoryCount:   data[3],
			NotificationUID: binary.LittleEndian.Uint32(data[4:]),
		})
	}
	return msgs
}

// RequestAncsNotiDetails requests an attribute of a notification, up
// to length bytes. Read the details with ReadAncsNotiDetails.
func (b *Bean) RequestAncsNotiDetails(attr NotiAttrID, length int, uid uint32) {
	if length+8 > serialBufferSize {
		length = serialBufferSize - 8
	}
	if length < 0 {
		length = 0
	}
	req := make([]byte, 8)
	req[0] = ancsCmdGetNotiAttrs
	binary.LittleEndian.PutUint32(req[1:], uid)
	req[5], req[6] = byte(attr), byte(length)
	logFailure("ancs details", b.Serial.AncsNotiDetails(req))
}

// PerformAncsAction performs the positive or negative action of a
// notification.
func (b *Bean) PerformAncsAction(uid uint32, action byte) {
	req := make([]byte, 6)
	req[0] = ancsCmdPerformAction
	binary.LittleEndian.PutUint32(req[1:], uid)
	req[5] = action
	logFailure("ancs action", b.Serial.AncsNotiDetails(req))
}

// ReadAncsNotiDetails reads up to max bytes of the requested details.
func (b *Bean) ReadAncsNotiDetails(max int) []byte {
	data, _ := b.Serial.ReadAncsMessage(max)
	return data
}
