package session

import "sync"

// MemoryWallet is a thread-safe in-memory Wallet. The shell reads it for the
// balance/energy display; the controller writes reply-confirmed values.
type MemoryWallet struct {
	mu      sync.RWMutex
	balance int
	energy  int
}

func NewMemoryWallet(balance, energy int) *MemoryWallet {
	return &MemoryWallet{balance: balance, energy: energy}
}

func (w *MemoryWallet) Balance() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.balance
}

func (w *MemoryWallet) Energy() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.energy
}

func (w *MemoryWallet) SetBalance(amount int) {
	w.mu.Lock()
	w.balance = amount
	w.mu.Unlock()
}

func (w *MemoryWallet) SetEnergy(amount int) {
	w.mu.Lock()
	w.energy = amount
	w.mu.Unlock()
}
