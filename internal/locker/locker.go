// Package locker реализует взаимоисключение по ключу сущности.
//
// Порядок захвата во всем сервисе фиксирован: сначала блокировка отчета, затем
// блокировка спасателя. Одновременно удерживается не более одной блокировки каждого вида.
package locker

import (
	"fmt"
	"sync"
)

// KeyedMutex выдает отдельный мьютекс на каждый ключ.
// Мьютекс создается при первом обращении и затем переиспользуется.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New создает пустой KeyedMutex
func New() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*sync.Mutex)}
}

// Lock захватывает мьютекс ключа и возвращает функцию освобождения
func (k *KeyedMutex) Lock(key string) (unlock func()) {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// LockID - Lock для числового идентификатора сущности
func (k *KeyedMutex) LockID(id int64) (unlock func()) {
	return k.Lock(fmt.Sprintf("%d", id))
}

// Len возвращает число известных ключей
func (k *KeyedMutex) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
