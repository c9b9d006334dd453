package jobstore

import (
	"sync"

	"concurrent-static-server/internal/events"
)

// Store は非同期タスクの結果を保持する
type Store struct {
	mu       sync.Mutex
	entries  []string
	eventBus *events.Bus
}

// New は空のStoreを作成する（バックエンドは初回Recordで確保）
func New() *Store {
	return &Store{}
}

// SetEventBus はイベントバスを設定する
func (s *Store) SetEventBus(bus *events.Bus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eventBus = bus
}

// Record はエントリを順序を保って追加する
func (s *Store) Record(entries ...string) {
	s.mu.Lock()
	if s.entries == nil {
		s.entries = make([]string, 0, len(entries))
	}
	s.entries = append(s.entries, entries...)
	total := len(s.entries)
	bus := s.eventBus
	s.mu.Unlock()

	bus.Publish(events.NewResultsRecordedEvent(len(entries), total))
}

// Snapshot は現在のエントリのコピーを返す
// 一度もRecordされていない場合は false を返す
func (s *Store) Snapshot() ([]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entries == nil {
		return nil, false
	}

	out := make([]string, len(s.entries))
	copy(out, s.entries)
	return out, true
}

// Len はエントリ数を返す
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
