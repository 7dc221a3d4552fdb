package packet

import "fmt"

// NoMessage is never sent; a poll that finds nothing reports it.
const NoMessage byte = 0

// ClientOpcode identifies a client→server message.
type ClientOpcode byte

const (
	C_InitLobby            ClientOpcode = 1
	C_JoinLobby            ClientOpcode = 2
	C_ChangePlayerProperty ClientOpcode = 3
	C_StartGame            ClientOpcode = 4
	C_LoadingComplete      ClientOpcode = 5
	C_LeaveGame            ClientOpcode = 6
	C_PlayerStateChange    ClientOpcode = 7
	C_StartAction          ClientOpcode = 8
	C_UseItem              ClientOpcode = 9
	C_SwapItem             ClientOpcode = 10
	C_CastVote             ClientOpcode = 11
	C_Console              ClientOpcode = 12
)

var clientOpcodeNames = map[ClientOpcode]string{
	C_InitLobby:            "InitLobby",
	C_JoinLobby:            "JoinLobby",
	C_ChangePlayerProperty: "ChangePlayerProperty",
	C_StartGame:            "StartGame",
	C_LoadingComplete:      "LoadingComplete",
	C_LeaveGame:            "LeaveGame",
	C_PlayerStateChange:    "PlayerStateChange",
	C_StartAction:          "StartAction",
	C_UseItem:              "UseItem",
	C_SwapItem:             "SwapItem",
	C_CastVote:             "CastVote",
	C_Console:              "Console",
}

func (op ClientOpcode) String() string {
	if n, ok := clientOpcodeNames[op]; ok {
		return n
	}
	return fmt.Sprintf("ClientOpcode(%d)", byte(op))
}

// ServerOpcode identifies a server→client message.
type ServerOpcode byte

const (
	S_PlayerId         ServerOpcode = 1
	S_PlayerJoined     ServerOpcode = 2
	S_PlayerLeft       ServerOpcode = 3
	S_PlayersInLobby   ServerOpcode = 4
	S_OwnerLeft        ServerOpcode = 5
	S_StartGame        ServerOpcode = 6
	S_AllPlayersLoaded ServerOpcode = 7
	S_PlayerStates     ServerOpcode = 8
	S_EnemyUpdate      ServerOpcode = 9
	S_ProjectileUpdate ServerOpcode = 10
	S_BatteryUpdate    ServerOpcode = 11
	S_ChangeRegion     ServerOpcode = 12
	S_SetZone          ServerOpcode = 13
	S_SetGuiPause      ServerOpcode = 14
	S_CastVote         ServerOpcode = 15
	S_GatherPlayers    ServerOpcode = 16
	S_ChangeItem       ServerOpcode = 17
	S_UpdateStash      ServerOpcode = 18
	S_MenuEventPage    ServerOpcode = 19
)

var serverOpcodeNames = map[ServerOpcode]string{
	S_PlayerId:         "PlayerId",
	S_PlayerJoined:     "PlayerJoined",
	S_PlayerLeft:       "PlayerLeft",
	S_PlayersInLobby:   "PlayersInLobby",
	S_OwnerLeft:        "OwnerLeft",
	S_StartGame:        "StartGame",
	S_AllPlayersLoaded: "AllPlayersLoaded",
	S_PlayerStates:     "PlayerStates",
	S_EnemyUpdate:      "EnemyUpdate",
	S_ProjectileUpdate: "ProjectileUpdate",
	S_BatteryUpdate:    "BatteryUpdate",
	S_ChangeRegion:     "ChangeRegion",
	S_SetZone:          "SetZone",
	S_SetGuiPause:      "SetGuiPause",
	S_CastVote:         "CastVote",
	S_GatherPlayers:    "GatherPlayers",
	S_ChangeItem:       "ChangeItem",
	S_UpdateStash:      "UpdateStash",
	S_MenuEventPage:    "MenuEventPage",
}

func (op ServerOpcode) String() string {
	if n, ok := serverOpcodeNames[op]; ok {
		return n
	}
	return fmt.Sprintf("ServerOpcode(%d)", byte(op))
}
