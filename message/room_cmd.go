// message/room_cmd.go
package message

import "github.com/google/uuid"

// RoomCmdType discriminates internal room-transfer commands.
type RoomCmdType string

const (
	RoomCmdChangeRoom RoomCmdType = "ch_room"
	RoomCmdMakeRoom   RoomCmdType = "mk_room"
)

// RoomCmd moves a user between rooms. It is consumed only by the room
// manager and never crosses the wire to a peer.
type RoomCmd struct {
	UID      uuid.UUID   `json:"uid"`
	Cmd      RoomCmdType `json:"room_cmd"`
	RoomFrom uuid.UUID   `json:"room_from"`
	RoomTo   uuid.UUID   `json:"room_to"`
}
