package store

import (
	"context"
	"sync"

	"github.com/akolanti/ragchain/internal/domain/commonModels"
	"github.com/akolanti/ragchain/pkg/logger_i"
)

// InMemoryHistoryStore keeps chat histories for the life of the process.
type InMemoryHistoryStore struct {
	chatLock *sync.RWMutex
	chatMap  map[string][]commonModels.Message
	logger   *logger_i.Logger
}

func InitInMemoryHistoryStore() *InMemoryHistoryStore {
	return &InMemoryHistoryStore{
		chatLock: new(sync.RWMutex),
		chatMap:  make(map[string][]commonModels.Message),
		logger:   logger_i.NewLogger("InMem History Store"),
	}
}

func (store *InMemoryHistoryStore) Exists(ctx context.Context, chatId string) bool {
	store.chatLock.RLock()
	defer store.chatLock.RUnlock()
	_, ok := store.chatMap[chatId]
	return ok
}

func (store *InMemoryHistoryStore) Init(ctx context.Context, chatId string) error {
	store.chatLock.Lock()
	defer store.chatLock.Unlock()
	store.chatMap[chatId] = make([]commonModels.Message, 0)
	return nil
}

// Load returns nil for an unknown chat.
func (store *InMemoryHistoryStore) Load(ctx context.Context, chatId string) ([]commonModels.Message, error) {
	store.chatLock.RLock()
	defer store.chatLock.RUnlock()
	return append([]commonModels.Message(nil), store.chatMap[chatId]...), nil
}

func (store *InMemoryHistoryStore) Append(ctx context.Context, chatId string, messages ...commonModels.Message) error {
	store.chatLock.Lock()
	defer store.chatLock.Unlock()
	store.chatMap[chatId] = append(store.chatMap[chatId], messages...)
	store.logger.Debug("Saved turns to history store", "chatId", chatId, "count", len(messages))
	return nil
}
