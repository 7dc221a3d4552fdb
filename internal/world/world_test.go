package world

import (
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/RyanBerge/SphereDefender-sub000/internal/ai"
	"github.com/RyanBerge/SphereDefender-sub000/internal/data"
	"github.com/RyanBerge/SphereDefender-sub000/internal/geom"
	"github.com/RyanBerge/SphereDefender-sub000/internal/net/packet"
)

const shippedDir = "../../data/yaml"

func loadDefs(t *testing.T) *data.Definitions {
	t.Helper()
	defs, err := data.LoadDefinitions(shippedDir)
	if err != nil {
		t.Fatalf("LoadDefinitions: %v", err)
	}
	return defs
}

func testConfig() GameConfig {
	return GameConfig{
		MaxPlayers:         4,
		MaxNameLength:      16,
		SpawnRadius:        60,
		BatteryStart:       100,
		BatteryMax:         200,
		LeylineChargeRate:  2,
		BatteryCostPerUnit: 0.25,
		ZoneColumns:        5,
		ZoneRows:           3,
	}
}

func addPlayer(s *State, sid uint64) *Player {
	p := NewPlayer(nil, time.Unix(0, 0))
	p.SessionID = sid
	s.AddPlayer(p)
	return p
}

// startGame runs a two-player session through lobby and loading.
func startGame(t *testing.T, s *State) (*Player, *Player) {
	t.Helper()
	a, b := addPlayer(s, 1), addPlayer(s, 2)
	if err := s.InitLobby(a, "Alice"); err != nil {
		t.Fatalf("InitLobby: %v", err)
	}
	if err := s.JoinLobby(b, "Bob"); err != nil {
		t.Fatalf("JoinLobby: %v", err)
	}
	if err := s.StartLoading(a); err != nil {
		t.Fatalf("StartLoading: %v", err)
	}
	if started, err := s.MarkLoaded(a); err != nil || started {
		t.Fatalf("MarkLoaded(a) = %v, %v; want false, nil", started, err)
	}
	if started, err := s.MarkLoaded(b); err != nil || !started {
		t.Fatalf("MarkLoaded(b) = %v, %v; want true, nil", started, err)
	}
	return a, b
}

// ── Names ───────────────────────────────────────────────────────────

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"Alice", 16, "Alice"},
		{"  Bob\t", 16, "Bob"},
		{"Ａｌｉｃｅ", 16, "Alice"},
		{"a\x00b\x07c", 16, "abc"},
		{"abcdefghij", 4, "abcd"},
		{"é", 16, "é"},
	}
	for _, tt := range tests {
		if got := SanitizeName(tt.in, tt.max); got != tt.want {
			t.Errorf("SanitizeName(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestDuplicateNamesGetSuffix(t *testing.T) {
	s := NewState(loadDefs(t), testConfig(), 1)
	a, b := addPlayer(s, 1), addPlayer(s, 2)
	_ = s.InitLobby(a, "Sam")
	_ = s.JoinLobby(b, "sam")
	if b.Name != "sam (2)" {
		t.Fatalf("second name = %q, want %q", b.Name, "sam (2)")
	}
}

// ── Lobby and loading ───────────────────────────────────────────────

func TestLobbyAssignsIDsInJoinOrder(t *testing.T) {
	s := NewState(loadDefs(t), testConfig(), 1)
	a, b := addPlayer(s, 10), addPlayer(s, 11)
	if err := s.JoinLobby(a, "Alice"); !errors.Is(err, ErrNoLobby) {
		t.Fatalf("join before init: %v, want ErrNoLobby", err)
	}
	if err := s.InitLobby(a, "Alice"); err != nil {
		t.Fatal(err)
	}
	if err := s.InitLobby(b, "Bob"); !errors.Is(err, ErrLobbyExists) {
		t.Fatalf("second init: %v, want ErrLobbyExists", err)
	}
	if err := s.JoinLobby(b, "Bob"); err != nil {
		t.Fatal(err)
	}
	if a.ID != 1 || b.ID != 2 {
		t.Fatalf("ids = %d, %d; want 1, 2", a.ID, b.ID)
	}
	if s.OwnerID != a.ID {
		t.Fatalf("owner = %d, want %d", s.OwnerID, a.ID)
	}
	lobby := s.LobbyMessage(b.ID)
	if lobby.Requester != 2 || len(lobby.Players) != 2 || lobby.Players[0].Name != "Alice" {
		t.Fatalf("lobby = %+v", lobby)
	}
}

func TestOnlyOwnerStartsGame(t *testing.T) {
	s := NewState(loadDefs(t), testConfig(), 1)
	a, b := addPlayer(s, 1), addPlayer(s, 2)
	_ = s.InitLobby(a, "Alice")
	_ = s.JoinLobby(b, "Bob")
	if err := s.StartLoading(b); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("StartLoading by guest: %v, want ErrNotOwner", err)
	}
	if s.Phase != PhaseLobby {
		t.Fatalf("phase = %v, want lobby", s.Phase)
	}
}

func TestChangePropertyRejectsUnknownWeapon(t *testing.T) {
	s := NewState(loadDefs(t), testConfig(), 1)
	a := addPlayer(s, 1)
	_ = s.InitLobby(a, "Alice")
	if err := s.ChangeProperty(a, "Al", 99); !errors.Is(err, ErrUnknownWeapon) {
		t.Fatalf("err = %v, want ErrUnknownWeapon", err)
	}
	if err := s.ChangeProperty(a, "Al", 3); err != nil {
		t.Fatal(err)
	}
	if a.Name != "Al" || a.Weapon != 3 {
		t.Fatalf("player = %q/%d", a.Name, a.Weapon)
	}
}

func TestGameBeginsWhenAllLoadedAndSpawnsOnCircle(t *testing.T) {
	s := NewState(loadDefs(t), testConfig(), 7)
	a, b := startGame(t, s)
	if s.Phase != PhaseGame || s.Region == nil {
		t.Fatalf("phase = %v region = %v", s.Phase, s.Region)
	}
	if s.Region.Def.Role != data.RoleTown {
		t.Fatalf("first region role = %s, want town", s.Region.Def.Role)
	}
	center := s.Region.PlayerSpawn()
	for _, p := range []*Player{a, b} {
		if p.Status != packet.StatusAlive {
			t.Errorf("player %d status = %v", p.ID, p.Status)
		}
		if d := p.Pos.Dist(center); math.Abs(d-60) > 1e-9 {
			t.Errorf("player %d spawn distance = %v, want 60", p.ID, d)
		}
	}
	if a.Pos.Near(b.Pos, 1) {
		t.Fatal("players share a spawn point")
	}
}

func TestLeaverDuringLoadingCompletesLoad(t *testing.T) {
	s := NewState(loadDefs(t), testConfig(), 1)
	a, b := addPlayer(s, 1), addPlayer(s, 2)
	_ = s.InitLobby(a, "Alice")
	_ = s.JoinLobby(b, "Bob")
	_ = s.StartLoading(a)
	if _, err := s.MarkLoaded(a); err != nil {
		t.Fatal(err)
	}
	d := s.Depart(b)
	if !d.GameStarted || s.Phase != PhaseGame {
		t.Fatalf("departure = %+v phase = %v; want game started", d, s.Phase)
	}
}

// ── Departures ──────────────────────────────────────────────────────

func TestOwnerLeavingLobbyInvalidatesSession(t *testing.T) {
	s := NewState(loadDefs(t), testConfig(), 1)
	a, b := addPlayer(s, 1), addPlayer(s, 2)
	_ = s.InitLobby(a, "Alice")
	_ = s.JoinLobby(b, "Bob")

	d := s.Depart(a)
	if !d.WasOwner || !d.Invalidated {
		t.Fatalf("departure = %+v", d)
	}
	if len(d.Evicted) != 1 || d.Evicted[0] != b {
		t.Fatalf("evicted = %v, want [Bob]", d.Evicted)
	}
	if b.Status != packet.StatusDisconnected || s.Phase != PhaseUninitialized {
		t.Fatalf("b = %v phase = %v", b.Status, s.Phase)
	}
}

func TestOwnerLeavingGamePromotesNext(t *testing.T) {
	s := NewState(loadDefs(t), testConfig(), 1)
	a, b := startGame(t, s)
	d := s.Depart(a)
	if !d.WasOwner || d.Invalidated || d.NewOwner != b.ID {
		t.Fatalf("departure = %+v", d)
	}
	if s.Phase != PhaseGame {
		t.Fatalf("phase = %v, want game", s.Phase)
	}
	s.RemovePlayer(a.SessionID)
	if s.PlayerCount() != 1 || s.GetByID(a.ID) != nil {
		t.Fatal("leaver still registered")
	}
}

func TestGuestLeavingIsPlain(t *testing.T) {
	s := NewState(loadDefs(t), testConfig(), 1)
	_, b := startGame(t, s)
	d := s.Depart(b)
	if d.WasOwner || d.Invalidated || d.NewOwner != 0 {
		t.Fatalf("departure = %+v", d)
	}
}

// ── Voting ──────────────────────────────────────────────────────────

func TestResolveVote(t *testing.T) {
	ballot := func(voted, confirmed bool, choice uint16) *Player {
		return &Player{Vote: VoteState{Voted: voted, Confirmed: confirmed, Choice: choice}}
	}
	tests := []struct {
		name   string
		voters []*Player
		want   uint16
		ok     bool
	}{
		{"no voters", nil, 0, false},
		{"not voted", []*Player{ballot(true, true, 1), ballot(false, false, 0)}, 0, false},
		{"not confirmed", []*Player{ballot(true, true, 1), ballot(true, false, 1)}, 0, false},
		{"unanimous", []*Player{ballot(true, true, 4), ballot(true, true, 4)}, 4, true},
		{"tie", []*Player{ballot(true, true, 1), ballot(true, true, 2)}, 0, false},
		{"plurality", []*Player{ballot(true, true, 1), ballot(true, true, 2), ballot(true, true, 2)}, 2, true},
		{"three-way tie", []*Player{ballot(true, true, 1), ballot(true, true, 2), ballot(true, true, 3)}, 0, false},
		{"cancel", []*Player{ballot(true, true, packet.NoChoice)}, packet.NoChoice, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveVote(tt.voters)
			if got != tt.want || ok != tt.ok {
				t.Fatalf("ResolveVote = %d, %v; want %d, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestPendingVoteNeedsOpenGui(t *testing.T) {
	s := NewState(loadDefs(t), testConfig(), 1)
	a, b := startGame(t, s)
	s.CastVote(a, 1, true)
	s.CastVote(b, 1, true)
	if _, ok := s.PendingVote(); ok {
		t.Fatal("vote resolved with no GUI open")
	}
	s.OpenOvermap()
	if a.Vote.Voted {
		t.Fatal("opening the overmap kept stale ballots")
	}
	relay := s.CastVote(a, 1, true)
	if relay.Player != a.ID || relay.Choice != 1 || !relay.Confirmed {
		t.Fatalf("relay = %+v", relay)
	}
	if _, ok := s.PendingVote(); ok {
		t.Fatal("resolved before everyone voted")
	}
	s.CastVote(b, 1, true)
	if got, ok := s.PendingVote(); !ok || got != 1 {
		t.Fatalf("PendingVote = %d, %v", got, ok)
	}
}

// ── Zone ────────────────────────────────────────────────────────────

func TestGenerateZoneConnectedAndDeterministic(t *testing.T) {
	defs := loadDefs(t)
	z1, err := GenerateZone(rand.New(rand.NewSource(3)), defs.Regions, 6, 4)
	if err != nil {
		t.Fatal(err)
	}
	z2, _ := GenerateZone(rand.New(rand.NewSource(3)), defs.Regions, 6, 4)
	if len(z1.Nodes) != 1+5*4 || len(z1.Links) != len(z2.Links) {
		t.Fatalf("nodes = %d links = %d/%d", len(z1.Nodes), len(z1.Links), len(z2.Links))
	}
	for i := range z1.Links {
		if z1.Links[i] != z2.Links[i] {
			t.Fatalf("link %d differs: %+v vs %+v", i, z1.Links[i], z2.Links[i])
		}
	}
	if defs.Regions.Get(z1.Nodes[z1.Start].Type).Role != data.RoleTown {
		t.Fatal("start node is not a town")
	}

	seen := map[uint16]bool{z1.Start: true}
	queue := []uint16{z1.Start}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, m := range z1.Neighbors(n) {
			if !seen[m] {
				seen[m] = true
				queue = append(queue, m)
			}
		}
	}
	if len(seen) != len(z1.Nodes) {
		t.Fatalf("reachable = %d of %d", len(seen), len(z1.Nodes))
	}

	for _, l := range z1.Links {
		ca, cb := z1.Nodes[l.A].Column, z1.Nodes[l.B].Column
		if cb-ca != 1 && ca-cb != 1 {
			t.Fatalf("link %+v spans columns %d and %d", l, ca, cb)
		}
		if want := z1.Nodes[l.A].Pos.Dist(z1.Nodes[l.B].Pos); l.Distance != want {
			t.Fatalf("link distance = %v, want %v", l.Distance, want)
		}
	}
}

func TestZoneLinksDoNotCross(t *testing.T) {
	defs := loadDefs(t)
	for seed := int64(0); seed < 20; seed++ {
		z, err := GenerateZone(rand.New(rand.NewSource(seed)), defs.Regions, 5, 4)
		if err != nil {
			t.Fatal(err)
		}
		for i, a := range z.Links {
			for _, b := range z.Links[i+1:] {
				if a.A == b.A || a.A == b.B || a.B == b.A || a.B == b.B {
					continue
				}
				if segmentsCross(z.Nodes[a.A].Pos, z.Nodes[a.B].Pos, z.Nodes[b.A].Pos, z.Nodes[b.B].Pos) {
					t.Fatalf("seed %d: links %+v and %+v cross", seed, a, b)
				}
			}
		}
	}
}

func segmentsCross(p1, p2, q1, q2 geom.Vec2) bool {
	cross := func(o, a, b geom.Vec2) float64 {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}
	d1, d2 := cross(q1, q2, p1), cross(q1, q2, p2)
	d3, d4 := cross(p1, p2, q1), cross(p1, p2, q2)
	return d1*d2 < 0 && d3*d4 < 0
}

func TestRegionSeedStable(t *testing.T) {
	if RegionSeed(42, 3) != RegionSeed(42, 3) {
		t.Fatal("seed not stable")
	}
	if RegionSeed(42, 3) == RegionSeed(42, 4) || RegionSeed(42, 3) == RegionSeed(43, 3) {
		t.Fatal("seed ignores its inputs")
	}
	if RegionSeed(1, 1) < 0 {
		t.Fatal("negative seed")
	}
}

// ── Travel ──────────────────────────────────────────────────────────

func TestTravelRejectsNonAdjacent(t *testing.T) {
	s := NewState(loadDefs(t), testConfig(), 1)
	startGame(t, s)
	far := s.Zone.Nodes[len(s.Zone.Nodes)-1].ID
	if _, err := s.TravelTo(far); !errors.Is(err, ErrNotAdjacent) {
		t.Fatalf("err = %v, want ErrNotAdjacent", err)
	}
	if s.Region.Node != s.Zone.Start {
		t.Fatal("region changed on a rejected travel")
	}
}

func TestTravelSpendsBatteryAndRevives(t *testing.T) {
	s := NewState(loadDefs(t), testConfig(), 1)
	a, b := startGame(t, s)
	b.SetHealth(0)
	if b.Status != packet.StatusDead {
		t.Fatalf("b status = %v, want dead", b.Status)
	}
	next := s.Zone.Neighbors(s.Region.Node)[0]
	dist, _ := s.Zone.Distance(s.Region.Node, next)

	res, err := s.TravelTo(next)
	if err != nil {
		t.Fatal(err)
	}
	wantCost := dist * 0.25
	if math.Abs(res.Cost-wantCost) > 1e-9 || res.Underflow {
		t.Fatalf("result = %+v, want cost %v", res, wantCost)
	}
	if math.Abs(s.Region.Battery-(100-wantCost)) > 1e-9 {
		t.Fatalf("battery = %v, want %v", s.Region.Battery, 100-wantCost)
	}
	if s.Region.Node != next || s.Visited != 2 {
		t.Fatalf("node = %d visited = %d", s.Region.Node, s.Visited)
	}
	for _, p := range []*Player{a, b} {
		if p.Status != packet.StatusAlive || p.Health != MaxHealth {
			t.Fatalf("player %d = %v/%v after travel", p.ID, p.Status, p.Health)
		}
	}
}

func TestTravelWithBrokenArrivalEventChangesNothing(t *testing.T) {
	s := NewState(loadDefs(t), testConfig(), 1)
	startGame(t, s)
	from := s.Region
	battery := from.Battery
	next := s.Zone.Neighbors(from.Node)[0]
	s.Defs.Regions.Get(s.Zone.Node(next).Type).MenuEvent = 0xFFFE
	s.Gui = packet.GuiOvermap

	if _, err := s.TravelTo(next); !errors.Is(err, ErrUnknownMenu) {
		t.Fatalf("err = %v, want ErrUnknownMenu", err)
	}
	if s.Region != from || s.Region.Battery != battery || s.Visited != 1 {
		t.Fatalf("region %d battery %v visited %d after a failed travel", s.Region.Node, s.Region.Battery, s.Visited)
	}
	if s.Gui != packet.GuiOvermap || s.Menu != nil {
		t.Fatalf("gui = %v menu = %v, want the overmap still open", s.Gui, s.Menu)
	}
}

func TestTravelUnderflowEmptiesBattery(t *testing.T) {
	cfg := testConfig()
	cfg.BatteryStart = 5
	cfg.BatteryCostPerUnit = 1
	s := NewState(loadDefs(t), cfg, 1)
	startGame(t, s)
	next := s.Zone.Neighbors(s.Region.Node)[0]
	res, err := s.TravelTo(next)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Underflow || s.Region.Battery != 0 || s.Region.Node != next {
		t.Fatalf("result = %+v battery = %v", res, s.Region.Battery)
	}
}

// ── Combat and items ────────────────────────────────────────────────

func TestHealthClamps(t *testing.T) {
	p := &Player{Status: packet.StatusAlive, Health: 50}
	p.Heal(80)
	if p.Health != MaxHealth {
		t.Fatalf("health = %v, want %v", p.Health, MaxHealth)
	}
	if died := p.Damage(250); !died || p.Health != 0 || p.Status != packet.StatusDead {
		t.Fatalf("after overkill: died=%v health=%v status=%v", died, p.Health, p.Status)
	}
	if p.Damage(10) {
		t.Fatal("dead player died twice")
	}
}

func TestMeleeSwingHitsEachEnemyOnce(t *testing.T) {
	s := NewState(loadDefs(t), testConfig(), 1)
	a, _ := startGame(t, s)
	demon := s.Defs.Entities.Get("small_demon")
	front := ai.NewEnemy(100, demon, a.Pos.Add(geom.V(50, 0)))
	behind := ai.NewEnemy(101, demon, a.Pos.Add(geom.V(-50, 0)))
	s.Region.Enemies = []*ai.Enemy{front, behind}

	if !s.StartAttack(a, 0) {
		t.Fatal("attack did not start")
	}
	if s.StartAttack(a, 0) {
		t.Fatal("attack restarted during cooldown")
	}
	body := s.playerBody()
	s.stepSwing(a, body, 0.01)
	s.stepSwing(a, body, 0.01)

	if front.Health != demon.MaxHealth-22 {
		t.Fatalf("front health = %v, want %v", front.Health, demon.MaxHealth-22)
	}
	if behind.Health != demon.MaxHealth {
		t.Fatalf("enemy behind the swing was hit: %v", behind.Health)
	}
	if front.LastHitBy != a.ID {
		t.Fatalf("LastHitBy = %d, want %d", front.LastHitBy, a.ID)
	}
}

func TestProjectileHitsAndIsSpent(t *testing.T) {
	s := NewState(loadDefs(t), testConfig(), 1)
	a, _ := startGame(t, s)
	a.Weapon = 3
	demon := s.Defs.Entities.Get("small_demon")
	target := ai.NewEnemy(100, demon, a.Pos.Add(geom.V(100, 0)))
	s.Region.Enemies = []*ai.Enemy{target}

	if !s.StartAttack(a, 0) || len(s.Region.Projectiles) != 1 {
		t.Fatalf("projectiles = %d", len(s.Region.Projectiles))
	}
	for i := 0; i < 20 && len(s.Region.Projectiles) > 0; i++ {
		s.Region.updateProjectiles(0.02)
	}
	if len(s.Region.Projectiles) != 0 {
		t.Fatal("projectile never spent")
	}
	if target.Health != demon.MaxHealth-16 {
		t.Fatalf("target health = %v, want %v", target.Health, demon.MaxHealth-16)
	}
}

func TestStashSwapAndUse(t *testing.T) {
	s := NewState(loadDefs(t), testConfig(), 1)
	a, _ := startGame(t, s)
	if !s.AddToStash(1) || s.Stash[0] != 1 {
		t.Fatalf("stash = %v", s.Stash)
	}
	if err := s.SwapItem(a, 0); err != nil {
		t.Fatal(err)
	}
	if a.Item != 1 || s.Stash[0] != data.ItemNone {
		t.Fatalf("held = %d stash[0] = %d", a.Item, s.Stash[0])
	}
	if err := s.SwapItem(a, packet.StashSize); err == nil {
		t.Fatal("out of range slot accepted")
	}
	a.SetHealth(30)
	if !s.UseItem(a) || a.Health != 70 || a.Item != data.ItemNone {
		t.Fatalf("after medkit: used health=%v item=%d", a.Health, a.Item)
	}
	if s.UseItem(a) {
		t.Fatal("used an empty hand")
	}
}

func TestStashFull(t *testing.T) {
	s := NewState(loadDefs(t), testConfig(), 1)
	for i := 0; i < packet.StashSize; i++ {
		if !s.AddToStash(2) {
			t.Fatalf("slot %d refused", i)
		}
	}
	if s.AddToStash(1) {
		t.Fatal("full stash accepted an item")
	}
}

func TestEnemyStrikeHitsOncePerLeap(t *testing.T) {
	s := NewState(loadDefs(t), testConfig(), 1)
	a, b := startGame(t, s)
	b.Pos = geom.V(10, 10)
	def := s.Defs.Entities.Get("small_demon")
	e := ai.NewEnemy(100, def, a.Pos.Add(geom.V(200, 0)))
	s.Region.Enemies = []*ai.Enemy{e}
	w := &ai.World{
		Targets: []ai.Target{{ID: a.ID, Pos: a.Pos, Size: s.playerBody(), Alive: true}},
		Enemies: s.Region.Enemies,
		Rng:     rand.New(rand.NewSource(1)),
	}
	// Hunting picks the leap once the target is in range.
	for i := 0; i < 200; i++ {
		e.Update(w, 0.01)
		if _, ok := e.Striking(); ok {
			break
		}
	}
	if _, ok := e.Striking(); !ok {
		t.Fatal("enemy never reached the dash")
	}
	e.Pos = a.Pos
	var res TickResult
	s.enemyStrikes(s.playerBody(), &res)
	s.enemyStrikes(s.playerBody(), &res)
	if a.Health != MaxHealth-14 {
		t.Fatalf("health = %v, want %v", a.Health, MaxHealth-14)
	}
}

// ── Gathering, waves, menus ─────────────────────────────────────────

func TestGatheringOpensOverOnEdge(t *testing.T) {
	s := NewState(loadDefs(t), testConfig(), 1)
	a, b := startGame(t, s)
	inside := s.Region.Interior.Center()
	a.Pos = inside

	res := s.Simulate(0.01)
	if res.AllGathered || len(res.Gathers) != 1 || res.Gathers[0] != (GatherChange{Player: a.ID, Active: true}) {
		t.Fatalf("one inside: %+v", res)
	}
	b.Pos = inside
	if res = s.Simulate(0.01); !res.AllGathered {
		t.Fatalf("both inside: %+v", res)
	}
	if res = s.Simulate(0.01); res.AllGathered {
		t.Fatal("all-gathered fired twice without anyone leaving")
	}
	b.Pos = s.Region.PlayerSpawn()
	s.Simulate(0.01)
	b.Pos = inside
	if res = s.Simulate(0.01); !res.AllGathered {
		t.Fatal("re-entering did not fire again")
	}
}

func TestDeadPlayersDoNotBlockGathering(t *testing.T) {
	s := NewState(loadDefs(t), testConfig(), 1)
	a, b := startGame(t, s)
	b.SetHealth(0)
	a.Pos = s.Region.Interior.Center()
	if res := s.Simulate(0.01); !res.AllGathered {
		t.Fatalf("res = %+v", res)
	}
}

func TestPausedGameDoesNotMove(t *testing.T) {
	s := NewState(loadDefs(t), testConfig(), 1)
	a, _ := startGame(t, s)
	a.Movement = packet.Movement{Right: true}
	start := a.Pos
	s.OpenOvermap()
	s.Simulate(0.1)
	if !a.Pos.Equal(start) {
		t.Fatal("player moved while paused")
	}
	s.CloseGui()
	s.Simulate(0.1)
	if want := start.X + 22; math.Abs(a.Pos.X-want) > 1e-9 {
		t.Fatalf("x = %v, want %v", a.Pos.X, want)
	}
	a.Console = true
	before := a.Pos
	s.Simulate(0.1)
	if !a.Pos.Equal(before) {
		t.Fatal("player moved with console open")
	}
}

func TestWaveSpawnsOnInterval(t *testing.T) {
	defs := loadDefs(t)
	def := defs.Regions.Get(2)
	r := NewRegion(def, 1, defs.Entities, 100, testConfig(), 5)
	before := len(r.Enemies)
	if before == 0 {
		t.Fatal("initial packs did not spawn")
	}
	if n := r.Update(def.WaveInterval-0.5, nil); n != 0 {
		t.Fatalf("wave spawned early: %d", n)
	}
	if n := r.Update(1, nil); n == 0 || len(r.Enemies) != before+n {
		t.Fatalf("wave = %d enemies = %d (was %d)", n, len(r.Enemies), before)
	}
}

func TestCullReleasesDeadEnemies(t *testing.T) {
	defs := loadDefs(t)
	r := NewRegion(defs.Regions.Get(3), 1, defs.Entities, 100, testConfig(), 5)
	n := len(r.Enemies)
	victim := r.Enemies[0]
	victim.TakeDamage(1e6, 7)
	kills := r.Cull()
	if len(kills) != 1 || kills[0].EnemyID != victim.ID || kills[0].Killer != 7 {
		t.Fatalf("kills = %+v", kills)
	}
	if len(r.Enemies) != n-1 || r.Enemy(victim.ID) != nil {
		t.Fatal("dead enemy not removed")
	}
}

func TestLeylineChargesToMax(t *testing.T) {
	defs := loadDefs(t)
	cfg := testConfig()
	r := NewRegion(defs.Regions.Get(4), 1, defs.Entities, 199, cfg, 5)
	r.Enemies = nil
	r.Update(10, nil)
	if r.Battery != cfg.BatteryMax {
		t.Fatalf("battery = %v, want %v", r.Battery, cfg.BatteryMax)
	}
}

type fakeScripts struct {
	called string
}

func (f *fakeScripts) MenuOption(script string, _ MenuContext) (MenuEffect, error) {
	f.called = script
	return MenuEffect{BatteryDelta: 12, Item: "battery_cell"}, nil
}

func TestMenuEventProgression(t *testing.T) {
	s := NewState(loadDefs(t), testConfig(), 1)
	scripts := &fakeScripts{}
	s.Scripts = scripts
	startGame(t, s)
	if err := s.OpenMenu(1); err != nil {
		t.Fatal(err)
	}
	if s.Gui != packet.GuiMenuEvent || s.Menu.Page != 0 {
		t.Fatalf("gui = %v page = %d", s.Gui, s.Menu.Page)
	}
	if _, err := s.ApplyMenuChoice(9); !errors.Is(err, ErrBadOption) {
		t.Fatalf("err = %v, want ErrBadOption", err)
	}
	battery := s.Region.Battery

	res, err := s.ApplyMenuChoice(1)
	if err != nil || res.Closed {
		t.Fatalf("res = %+v err = %v", res, err)
	}
	if scripts.called != "caravan_salvage" || s.Menu.Page != 2 {
		t.Fatalf("script = %q page = %d", scripts.called, s.Menu.Page)
	}
	if s.Region.Battery != battery+12 || !res.StashChanged || s.Stash[0] != 2 {
		t.Fatalf("battery = %v stash = %v", s.Region.Battery, s.Stash[:2])
	}

	res, err = s.ApplyMenuChoice(0)
	if err != nil || !res.Closed || s.Menu != nil || s.Gui != packet.GuiNone {
		t.Fatalf("closing: res = %+v err = %v gui = %v", res, err, s.Gui)
	}
}
