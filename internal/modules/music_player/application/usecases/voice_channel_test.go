package usecases

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/vibr/internal/modules/music_player/application"
	"github.com/sglre6355/vibr/internal/modules/music_player/application/ports"
)

func newVoiceChannelService(
	registry *mockRegistry,
	node *mockVoiceNode,
	voice *mockVoiceStateProvider,
	settings ports.SettingsStore,
) *VoiceChannelService {
	return NewVoiceChannelService(registry, node, voice, nil, settings, noopScheduler{}, PlayerDefaults{
		MaxQueueLength:    500,
		PauseTimeout:      time.Minute,
		DisconnectTimeout: 5 * time.Minute,
		Volume:            100,
	})
}

func TestVoiceChannelService_Join(t *testing.T) {
	otherChannel := snowflake.ID(9)

	tests := []struct {
		name         string
		input        JoinInput
		connected    bool
		voice        *mockVoiceStateProvider
		connectErr   error
		wantErr      bool
		wantErrIs    error
		wantChannel  snowflake.ID
		wantConnects int
		wantMoves    int
		wantAlready  bool
	}{
		{
			name:         "join user's channel",
			input:        JoinInput{GuildID: testGuildID, UserID: testUserID, NotificationChannelID: testTextChannel},
			voice:        &mockVoiceStateProvider{channels: map[snowflake.ID]snowflake.ID{testUserID: testVoiceChannel}},
			wantChannel:  testVoiceChannel,
			wantConnects: 1,
		},
		{
			name:         "join explicit channel",
			input:        JoinInput{GuildID: testGuildID, UserID: testUserID, VoiceChannelID: otherChannel},
			voice:        &mockVoiceStateProvider{},
			wantChannel:  otherChannel,
			wantConnects: 1,
		},
		{
			name:      "user not in voice",
			input:     JoinInput{GuildID: testGuildID, UserID: testUserID},
			voice:     &mockVoiceStateProvider{},
			wantErr:   true,
			wantErrIs: ErrNotInVoiceChannel,
		},
		{
			name:       "connect failure",
			input:      JoinInput{GuildID: testGuildID, VoiceChannelID: testVoiceChannel},
			voice:      &mockVoiceStateProvider{},
			connectErr: errors.New("gateway timeout"),
			wantErr:    true,
		},
		{
			name:        "already in the same channel",
			input:       JoinInput{GuildID: testGuildID, VoiceChannelID: testVoiceChannel},
			connected:   true,
			voice:       &mockVoiceStateProvider{},
			wantChannel: testVoiceChannel,
			wantAlready: true,
		},
		{
			name:        "move to another channel",
			input:       JoinInput{GuildID: testGuildID, VoiceChannelID: otherChannel},
			connected:   true,
			voice:       &mockVoiceStateProvider{},
			wantChannel: otherChannel,
			wantMoves:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := newMockRegistry()
			if tt.connected {
				registry.connectPlayer(&mockHandle{})
			}
			node := &mockVoiceNode{connectErr: tt.connectErr}
			svc := newVoiceChannelService(registry, node, tt.voice, nil)

			out, err := svc.Join(context.Background(), tt.input)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if tt.wantErrIs != nil && !errors.Is(err, tt.wantErrIs) {
					t.Errorf("expected error %v, got %v", tt.wantErrIs, err)
				}
				if registry.Count() != 0 {
					t.Error("expected no player to be registered")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out.VoiceChannelID != tt.wantChannel {
				t.Errorf("expected channel %d, got %d", tt.wantChannel, out.VoiceChannelID)
			}
			if out.AlreadyConnected != tt.wantAlready {
				t.Errorf("expected AlreadyConnected %v, got %v", tt.wantAlready, out.AlreadyConnected)
			}
			if len(node.connects) != tt.wantConnects {
				t.Errorf("expected %d connects, got %d", tt.wantConnects, len(node.connects))
			}
			if len(node.moves) != tt.wantMoves {
				t.Errorf("expected %d moves, got %d", tt.wantMoves, len(node.moves))
			}
			if _, ok := registry.Get(testGuildID); !ok {
				t.Error("expected player to be registered")
			}
		})
	}
}

func TestVoiceChannelService_JoinCreatesIdlePlayer(t *testing.T) {
	registry := newMockRegistry()
	node := &mockVoiceNode{}
	settings := &mockSettingsStore{stored: map[snowflake.ID]ports.GuildSettings{
		testGuildID: {Volume: 40, DND: true},
	}}
	svc := newVoiceChannelService(registry, node, &mockVoiceStateProvider{}, settings)

	_, err := svc.Join(context.Background(), JoinInput{
		GuildID:               testGuildID,
		VoiceChannelID:        testVoiceChannel,
		NotificationChannelID: testTextChannel,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	player, _ := registry.Get(testGuildID)
	snap := player.Snapshot()
	if !snap.DisconnectTimerPending {
		t.Error("expected a fresh player to arm the disconnect timer")
	}
	if snap.Volume != 40 {
		t.Errorf("expected stored volume 40, got %d", snap.Volume)
	}
	if !snap.DND {
		t.Error("expected stored DND to be restored")
	}
	if snap.NotificationChannelID != testTextChannel {
		t.Errorf("expected notification channel %d, got %d", testTextChannel, snap.NotificationChannelID)
	}
	if len(node.handle.volumes) != 1 || node.handle.volumes[0] != 40 {
		t.Errorf("expected node volume to be restored, got %v", node.handle.volumes)
	}
}

func TestVoiceChannelService_Leave(t *testing.T) {
	t.Run("connected", func(t *testing.T) {
		registry := newMockRegistry()
		handle := &mockHandle{}
		player := registry.playing(handle, "a", "b")
		svc := newVoiceChannelService(registry, &mockVoiceNode{}, &mockVoiceStateProvider{}, nil)

		if err := svc.Leave(context.Background(), LeaveInput{GuildID: testGuildID}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if registry.Count() != 0 {
			t.Error("expected player to be removed")
		}
		if !player.IsDestroyed() || handle.destroyed != 1 {
			t.Error("expected player to be destroyed once")
		}
	})

	t.Run("not connected", func(t *testing.T) {
		svc := newVoiceChannelService(newMockRegistry(), &mockVoiceNode{}, &mockVoiceStateProvider{}, nil)

		err := svc.Leave(context.Background(), LeaveInput{GuildID: testGuildID})
		if !errors.Is(err, ErrNotConnected) {
			t.Errorf("expected ErrNotConnected, got %v", err)
		}
	})
}

func TestVoiceChannelService_JoinWithoutNode(t *testing.T) {
	svc := NewVoiceChannelService(newMockRegistry(), nil, nil, nil, nil, nil, PlayerDefaults{})

	_, err := svc.Join(context.Background(), JoinInput{GuildID: 1, UserID: 2, VoiceChannelID: 3})
	if !errors.Is(err, ErrNodeUnavailable) {
		t.Errorf("expected ErrNodeUnavailable, got %v", err)
	}
}

func TestVoiceChannelService_ConcurrentJoinsConnectOnce(t *testing.T) {
	registry := newMockRegistry()
	node := &mockVoiceNode{}
	svc := newVoiceChannelService(registry, node, &mockVoiceStateProvider{}, nil)

	const joins = 5
	outputs := make([]*JoinOutput, joins)
	errs := make([]error, joins)
	var wg sync.WaitGroup
	for i := range joins {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outputs[i], errs[i] = svc.Join(context.Background(), JoinInput{
				GuildID:        testGuildID,
				VoiceChannelID: testVoiceChannel,
			})
		}()
	}
	wg.Wait()

	fresh := 0
	for i := range joins {
		if errs[i] != nil {
			t.Fatalf("unexpected error: %v", errs[i])
		}
		if !outputs[i].AlreadyConnected {
			fresh++
		}
	}
	if fresh != 1 {
		t.Errorf("expected exactly one fresh join, got %d", fresh)
	}
	if len(node.connects) != 1 {
		t.Errorf("expected 1 node connect, got %d", len(node.connects))
	}
	if node.handle.destroyed != 0 {
		t.Errorf("expected the node handle to stay alive, got %d destroys", node.handle.destroyed)
	}
}

// lateRegistry hides the guild's player from lookups until Add, where a
// player registered by another caller wins.
type lateRegistry struct {
	*mockRegistry
	winner *application.Player
}

func (r *lateRegistry) Get(snowflake.ID) (*application.Player, bool) {
	return nil, false
}

func (r *lateRegistry) Add(p *application.Player) bool {
	r.mockRegistry.Add(r.winner)
	return r.mockRegistry.Add(p)
}

func TestVoiceChannelService_JoinLosingRegistrationKeepsHandle(t *testing.T) {
	winnerHandle := &mockHandle{}
	winner := application.NewPlayer(application.PlayerConfig{
		GuildID:   testGuildID,
		ChannelID: testVoiceChannel,
		Handle:    winnerHandle,
		Scheduler: noopScheduler{},
	})
	registry := &lateRegistry{mockRegistry: newMockRegistry(), winner: winner}
	node := &mockVoiceNode{}
	svc := NewVoiceChannelService(registry, node, &mockVoiceStateProvider{}, nil, nil, noopScheduler{}, PlayerDefaults{
		MaxQueueLength: 500,
		Volume:         100,
	})

	out, err := svc.Join(context.Background(), JoinInput{GuildID: testGuildID, VoiceChannelID: testVoiceChannel})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.AlreadyConnected {
		t.Error("expected the losing join to report an existing connection")
	}
	if node.handle.destroyed != 0 {
		t.Errorf("expected the shared node handle to stay alive, got %d destroys", node.handle.destroyed)
	}
	if registered, _ := registry.mockRegistry.Get(testGuildID); registered != winner || winner.IsDestroyed() {
		t.Error("expected the registered player to survive")
	}
}
