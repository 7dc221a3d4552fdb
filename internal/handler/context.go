package handler

import (
	"github.com/RyanBerge/SphereDefender-sub000/internal/core/event"
	"github.com/RyanBerge/SphereDefender-sub000/internal/net/packet"
	"github.com/RyanBerge/SphereDefender-sub000/internal/world"
	"go.uber.org/zap"
)

// Deps holds shared dependencies injected into all message handlers.
type Deps struct {
	Log   *zap.Logger
	World *world.State
	Bus   *event.Bus
}

var (
	joinStates    = []packet.PlayerStatus{packet.StatusUninitialized}
	lobbyStates   = []packet.PlayerStatus{packet.StatusMenus}
	loadingStates = []packet.PlayerStatus{packet.StatusLoading}
	gameStates    = []packet.PlayerStatus{packet.StatusAlive, packet.StatusDead}
	anyStates     = []packet.PlayerStatus{
		packet.StatusUninitialized, packet.StatusMenus, packet.StatusLoading,
		packet.StatusAlive, packet.StatusDead,
	}
)

// RegisterAll registers all message handlers into the registry. The
// dispatcher passes the sending *world.Player as sess.
func RegisterAll(reg *packet.Registry, deps *Deps) {
	// Lobby
	reg.Register(packet.C_InitLobby, joinStates,
		func(sess any, msg packet.ClientMessage) {
			HandleInitLobby(sess.(*world.Player), msg.(packet.InitLobby), deps)
		},
	)
	reg.Register(packet.C_JoinLobby, joinStates,
		func(sess any, msg packet.ClientMessage) {
			HandleJoinLobby(sess.(*world.Player), msg.(packet.JoinLobby), deps)
		},
	)
	reg.Register(packet.C_ChangePlayerProperty, lobbyStates,
		func(sess any, msg packet.ClientMessage) {
			HandleChangeProperty(sess.(*world.Player), msg.(packet.ChangePlayerProperty), deps)
		},
	)
	reg.Register(packet.C_StartGame, lobbyStates,
		func(sess any, _ packet.ClientMessage) {
			HandleStartGame(sess.(*world.Player), deps)
		},
	)

	// Loading
	reg.Register(packet.C_LoadingComplete, loadingStates,
		func(sess any, _ packet.ClientMessage) {
			HandleLoadingComplete(sess.(*world.Player), deps)
		},
	)

	reg.Register(packet.C_LeaveGame, anyStates,
		func(sess any, _ packet.ClientMessage) {
			HandleLeaveGame(sess.(*world.Player), deps)
		},
	)

	// In game
	reg.Register(packet.C_PlayerStateChange, gameStates,
		func(sess any, msg packet.ClientMessage) {
			HandlePlayerStateChange(sess.(*world.Player), msg.(packet.PlayerStateChange), deps)
		},
	)
	reg.Register(packet.C_StartAction, gameStates,
		func(sess any, msg packet.ClientMessage) {
			HandleStartAction(sess.(*world.Player), msg.(packet.StartAction), deps)
		},
	)
	reg.Register(packet.C_UseItem, gameStates,
		func(sess any, _ packet.ClientMessage) {
			HandleUseItem(sess.(*world.Player), deps)
		},
	)
	reg.Register(packet.C_SwapItem, gameStates,
		func(sess any, msg packet.ClientMessage) {
			HandleSwapItem(sess.(*world.Player), msg.(packet.SwapItem), deps)
		},
	)
	reg.Register(packet.C_CastVote, gameStates,
		func(sess any, msg packet.ClientMessage) {
			HandleCastVote(sess.(*world.Player), msg.(packet.CastVote), deps)
		},
	)
	reg.Register(packet.C_Console, gameStates,
		func(sess any, msg packet.ClientMessage) {
			HandleConsole(sess.(*world.Player), msg.(packet.Console), deps)
		},
	)
}
