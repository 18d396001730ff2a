package session

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-session/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-session/internal/entity"
)

var errLinkClosed = errors.New("link closed")

type recorder struct {
	mu  sync.Mutex
	got []Notification
}

func (that *recorder) Send(n Notification) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.got = append(that.got, n)
	return nil
}

func (that *recorder) notifications() []Notification {
	that.mu.Lock()
	defer that.mu.Unlock()

	return append([]Notification(nil), that.got...)
}

func (that *recorder) kinds() []Kind {
	kinds := make([]Kind, 0)
	for _, n := range that.notifications() {
		kinds = append(kinds, n.Kind)
	}
	return kinds
}

func (that *recorder) clear() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.got = nil
}

type mockLink struct {
	mock.Mock
}

func (that *mockLink) Send(n Notification) error {
	args := that.Called(n)
	return args.Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// startedSession returns a session with Alice in slot 0 and Bob in slot 1.
func startedSession(t *testing.T) (*Session, *recorder, *recorder) {
	t.Helper()

	s := New(testLogger())
	alice, bob := &recorder{}, &recorder{}

	_, _, err := s.Join("Alice", alice)
	require.NoError(t, err)
	_, _, err = s.Join("Bob", bob)
	require.NoError(t, err)

	alice.clear()
	bob.clear()

	return s, alice, bob
}

func playMoves(t *testing.T, s *Session, moves [][3]int) entity.Outcome {
	t.Helper()

	var outcome entity.Outcome
	for _, m := range moves {
		var err error
		outcome, err = s.SubmitMove(m[0], m[1], m[2])
		require.NoError(t, err, "move %v", m)
	}
	return outcome
}

func TestSession_Join(t *testing.T) {
	t.Run("Assigns slots and marks in join order", func(t *testing.T) {
		// Given: a new session
		s := New(testLogger())
		alice, bob := &recorder{}, &recorder{}

		// When: two participants join
		first, firstMark, err := s.Join("Alice", alice)
		require.NoError(t, err)
		second, secondMark, err := s.Join("Bob", bob)
		require.NoError(t, err)

		// Then: the first joiner is slot 0 with MarkA, the second slot 1 with MarkB
		assert.Equal(t, 0, first)
		assert.Equal(t, entity.MarkA, firstMark)
		assert.Equal(t, 1, second)
		assert.Equal(t, entity.MarkB, secondMark)
		assert.Equal(t, PhaseAwaitingMove, s.Phase())
		assert.Equal(t, 0, s.Turn())
	})

	t.Run("Announces the match to both participants", func(t *testing.T) {
		s := New(testLogger())
		alice, bob := &recorder{}, &recorder{}

		_, _, err := s.Join("Alice", alice)
		require.NoError(t, err)

		// Then: the first joiner only hears about its own seat while waiting
		assert.Equal(t, []Kind{KindJoined}, alice.kinds())
		assert.Equal(t, PhaseAwaitingSecondParticipant, s.Phase())

		_, _, err = s.Join("Bob", bob)
		require.NoError(t, err)

		// Then: both see the match start followed by Alice's turn
		assert.Equal(t, []Kind{KindJoined, KindMatchStarted, KindTurn}, alice.kinds())
		assert.Equal(t, []Kind{KindJoined, KindMatchStarted, KindTurn}, bob.kinds())

		turn := bob.notifications()[2]
		require.NotNil(t, turn.Subject)
		assert.Equal(t, "Alice", turn.Subject.Name)
		assert.Equal(t, entity.MarkA, turn.Subject.Mark)

		joined := bob.notifications()[0]
		require.NotNil(t, joined.Subject)
		assert.Equal(t, 1, joined.Subject.Index)
		assert.Len(t, joined.Players, 2)
	})

	t.Run("Rejects a third participant", func(t *testing.T) {
		s, _, _ := startedSession(t)

		_, _, err := s.Join("Carol", &recorder{})

		require.ErrorIs(t, err, apperror.ErrSessionFull)
	})

	t.Run("Names blank participants by slot", func(t *testing.T) {
		s := New(testLogger())

		_, _, err := s.Join("   ", &recorder{})
		require.NoError(t, err)
		_, _, err = s.Join("", &recorder{})
		require.NoError(t, err)

		players := s.Status().Players
		require.Len(t, players, 2)
		assert.Equal(t, "Player 1", players[0].Name)
		assert.Equal(t, "Player 2", players[1].Name)
	})
}

func TestSession_SubmitMove(t *testing.T) {
	t.Run("Fails before the second participant joins", func(t *testing.T) {
		s := New(testLogger())
		_, _, err := s.Join("Alice", &recorder{})
		require.NoError(t, err)

		_, err = s.SubmitMove(0, 0, 0)

		require.ErrorIs(t, err, apperror.ErrSessionNotStarted)
		assert.True(t, s.Snapshot().Empty())
	})

	t.Run("Alternates turns and broadcasts board then turn", func(t *testing.T) {
		// Given: a started session
		s, alice, bob := startedSession(t)

		// When: Alice places her mark
		outcome, err := s.SubmitMove(0, 1, 1)
		require.NoError(t, err)

		// Then: the game continues with Bob to move
		assert.True(t, outcome.IsOngoing())
		assert.Equal(t, 1, s.Turn())
		assert.Equal(t, entity.MarkA, s.Snapshot()[1][1])

		for _, rec := range []*recorder{alice, bob} {
			got := rec.notifications()
			require.Len(t, got, 2)
			assert.Equal(t, KindBoard, got[0].Kind)
			assert.Equal(t, entity.MarkA, got[0].Board[1][1])
			assert.Equal(t, KindTurn, got[1].Kind)
			assert.Equal(t, "Bob", got[1].Subject.Name)
		}
	})

	t.Run("Rejected moves change nothing and are not broadcast", func(t *testing.T) {
		s, alice, bob := startedSession(t)
		playMoves(t, s, [][3]int{{0, 0, 0}})
		alice.clear()
		bob.clear()

		before := s.Snapshot()

		cases := []struct {
			name  string
			index int
			row   int
			col   int
			err   error
		}{
			{"out of turn", 0, 2, 2, apperror.ErrNotYourTurn},
			{"occupied", 1, 0, 0, apperror.ErrCellOccupied},
			{"row out of range", 1, 3, 0, apperror.ErrInvalidCoordinate},
			{"negative col", 1, 0, -1, apperror.ErrInvalidCoordinate},
			{"unknown participant", 5, 0, 1, apperror.ErrUnknownParticipant},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := s.SubmitMove(tc.index, tc.row, tc.col)

				require.ErrorIs(t, err, tc.err)
				assert.Equal(t, before, s.Snapshot())
				assert.Equal(t, 1, s.Turn())
			})
		}

		assert.Empty(t, alice.notifications())
		assert.Empty(t, bob.notifications())
	})

	t.Run("Turn always belongs to the participant who did not just move", func(t *testing.T) {
		s, _, _ := startedSession(t)

		cells := [][2]int{{1, 1}, {0, 0}, {2, 2}, {0, 2}, {0, 1}, {2, 1}, {1, 0}}
		for i, cell := range cells {
			mover := i % 2

			outcome, err := s.SubmitMove(mover, cell[0], cell[1])
			require.NoError(t, err)
			require.True(t, outcome.IsOngoing())

			assert.Equal(t, 1-mover, s.Turn())
		}
	})

	t.Run("Win resets the board and hands the first move back to slot 0", func(t *testing.T) {
		// Given: Alice and Bob in a started session
		s, alice, bob := startedSession(t)

		// When: Alice completes the top row while Bob plays the middle row
		outcome := playMoves(t, s, [][3]int{
			{0, 0, 0}, {1, 1, 0},
			{0, 0, 1}, {1, 1, 1},
			{0, 0, 2},
		})

		// Then: Alice wins, the board is empty and Alice moves first again
		assert.Equal(t, entity.Win(entity.MarkA), outcome)
		assert.Equal(t, 0, outcome.WinnerIndex())
		assert.Equal(t, entity.Snapshot{}, s.Snapshot())
		assert.Equal(t, 0, s.Turn())
		assert.Equal(t, PhaseAwaitingMove, s.Phase())
		assert.Equal(t, 2, s.Status().Round)

		// Then: the final move is announced as board, win, reset to both sides
		for _, rec := range []*recorder{alice, bob} {
			got := rec.notifications()
			tail := got[len(got)-3:]

			assert.Equal(t, KindBoard, tail[0].Kind)
			assert.Equal(t, entity.MarkA, tail[0].Board[0][2])
			assert.Equal(t, KindWin, tail[1].Kind)
			assert.Equal(t, "Alice", tail[1].Subject.Name)
			assert.Equal(t, KindReset, tail[2].Kind)
			assert.True(t, tail[2].Board.Empty())
			assert.Equal(t, 0, tail[2].Subject.Index)
		}
	})

	t.Run("Second participant's win still resets to slot 0", func(t *testing.T) {
		s, _, _ := startedSession(t)

		outcome := playMoves(t, s, [][3]int{
			{0, 0, 0}, {1, 1, 0},
			{0, 0, 1}, {1, 1, 1},
			{0, 2, 2}, {1, 1, 2},
		})

		assert.Equal(t, entity.Win(entity.MarkB), outcome)
		assert.Equal(t, 1, outcome.WinnerIndex())
		assert.True(t, s.Snapshot().Empty())
		assert.Equal(t, 0, s.Turn())
	})

	t.Run("Draw resets the board", func(t *testing.T) {
		s, alice, _ := startedSession(t)

		outcome := playMoves(t, s, [][3]int{
			{0, 0, 0}, {1, 0, 1},
			{0, 0, 2}, {1, 1, 1},
			{0, 1, 0}, {1, 1, 2},
			{0, 2, 1}, {1, 2, 0},
			{0, 2, 2},
		})

		assert.Equal(t, entity.Draw(), outcome)
		assert.True(t, s.Snapshot().Empty())
		assert.Equal(t, 0, s.Turn())

		kinds := alice.kinds()
		assert.Equal(t, []Kind{KindBoard, KindDraw, KindReset}, kinds[len(kinds)-3:])
	})

	t.Run("Session stays usable for another game", func(t *testing.T) {
		s, _, _ := startedSession(t)
		playMoves(t, s, [][3]int{{0, 0, 0}, {1, 1, 0}, {0, 0, 1}, {1, 1, 1}, {0, 0, 2}})

		outcome, err := s.SubmitMove(0, 0, 0)

		require.NoError(t, err)
		assert.True(t, outcome.IsOngoing())
		assert.Equal(t, entity.MarkA, s.Snapshot()[0][0])

		players := s.Status().Players
		assert.Equal(t, "Alice", players[0].Name)
		assert.Equal(t, entity.MarkB, players[1].Mark)
	})

	t.Run("Link failures do not block the move", func(t *testing.T) {
		s := New(testLogger())
		broken := &mockLink{}
		broken.On("Send", mock.Anything).Return(errLinkClosed)

		_, _, err := s.Join("Alice", broken)
		require.NoError(t, err)
		_, _, err = s.Join("Bob", &recorder{})
		require.NoError(t, err)

		_, err = s.SubmitMove(0, 0, 0)

		require.NoError(t, err)
		assert.Equal(t, 1, s.Turn())
		broken.AssertCalled(t, "Send", mock.MatchedBy(func(n Notification) bool { return n.Kind == KindBoard }))
	})
}

func TestSession_Leave(t *testing.T) {
	t.Run("Ends the session for the remaining participant", func(t *testing.T) {
		// Given: a session with one move played
		s, alice, bob := startedSession(t)
		playMoves(t, s, [][3]int{{0, 0, 0}})
		before := s.Snapshot()
		alice.clear()

		// When: Alice disconnects
		require.NoError(t, s.Leave(0))

		// Then: Bob's next move fails without touching the board
		_, err := s.SubmitMove(1, 1, 1)
		require.ErrorIs(t, err, apperror.ErrSessionEnded)
		assert.Equal(t, before, s.Snapshot())
		assert.True(t, s.Ended())

		// Then: only Bob is told, and he is told who left
		assert.Empty(t, alice.notifications())
		got := bob.notifications()
		last := got[len(got)-1]
		assert.Equal(t, KindSessionEnded, last.Kind)
		assert.Equal(t, "Alice", last.Subject.Name)
	})

	t.Run("Is idempotent and blocks new joins", func(t *testing.T) {
		s, _, _ := startedSession(t)

		require.NoError(t, s.Leave(1))
		require.NoError(t, s.Leave(0))

		_, _, err := s.Join("Carol", &recorder{})
		assert.ErrorIs(t, err, apperror.ErrSessionEnded)
	})

	t.Run("Ends a session still waiting for an opponent", func(t *testing.T) {
		s := New(testLogger())
		_, _, err := s.Join("Alice", &recorder{})
		require.NoError(t, err)

		require.NoError(t, s.Leave(0))

		assert.Equal(t, PhaseEnded, s.Phase())
	})

	t.Run("Rejects an unknown participant", func(t *testing.T) {
		s := New(testLogger())
		_, _, err := s.Join("Alice", &recorder{})
		require.NoError(t, err)

		err = s.Leave(1)

		require.ErrorIs(t, err, apperror.ErrUnknownParticipant)
		assert.False(t, s.Ended())
	})
}

func TestSession_Observers(t *testing.T) {
	// Given: a session with an observer
	observer := &recorder{}
	s := New(testLogger(), observer)

	// When: two participants join and one move is played
	_, _, err := s.Join("Alice", &recorder{})
	require.NoError(t, err)
	_, _, err = s.Join("Bob", &recorder{})
	require.NoError(t, err)
	_, err = s.SubmitMove(0, 2, 2)
	require.NoError(t, err)

	// Then: the observer sees broadcasts but not private join notices
	assert.Equal(t, []Kind{KindMatchStarted, KindTurn, KindBoard, KindTurn}, observer.kinds())
	for _, n := range observer.notifications() {
		assert.Equal(t, s.ID(), n.SessionID)
	}
}

func TestSession_ConcurrentMoves(t *testing.T) {
	// Given: a started session and two participants hammering it at once
	s, alice, bob := startedSession(t)

	var wg sync.WaitGroup
	for index := 0; index < 2; index++ {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			for i := 0; i < 300; i++ {
				cell := (i*7 + index*4) % 9
				_, _ = s.SubmitMove(index, cell/3, cell%3)
			}
		}(index)
	}
	wg.Wait()

	// Then: both participants observed exactly the same sequence of states
	aliceGot, bobGot := alice.notifications(), bob.notifications()
	require.Equal(t, len(aliceGot), len(bobGot))
	for i := range aliceGot {
		assert.Equal(t, aliceGot[i].Kind, bobGot[i].Kind)
		assert.Equal(t, aliceGot[i].Board, bobGot[i].Board)
	}

	// Then: every board notification adds exactly one mark to the previous state
	previous := entity.Snapshot{}
	for _, n := range aliceGot {
		switch n.Kind {
		case KindBoard:
			assert.Equal(t, 1, countMarks(n.Board)-countMarks(previous))
			previous = n.Board
		case KindReset:
			previous = entity.Snapshot{}
		}
	}
}

func countMarks(board entity.Snapshot) int {
	count := 0
	for _, row := range board {
		for _, cell := range row {
			if cell != entity.Empty {
				count++
			}
		}
	}
	return count
}
