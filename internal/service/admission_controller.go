package service

import (
	"container/list"
	"strings"
	"sync"
	"time"
)

// AdmissionController decide, por identidad de cliente, si una request puede
// continuar segun una ventana deslizante de admisiones previas.
type AdmissionController interface {
	TryAdmit(identity string, limit int, window time.Duration) bool
	Remaining(identity string, limit int, window time.Duration) int
	ResetAt(identity string, window time.Duration) time.Time
}

const (
	defaultAdmissionLimit  = 5
	defaultAdmissionWindow = time.Hour
	unknownIdentity        = "unknown"
)

// rateLimitBucket guarda, en orden de insercion, los timestamps admitidos dentro
// de la ventana vigente.
type rateLimitBucket struct {
	identity   string
	timestamps []time.Time
}

// prune descarta del frente los timestamps con edad >= window.
func (b *rateLimitBucket) prune(now time.Time, window time.Duration) {
	cutoff := now.Add(-window)
	i := 0
	for i < len(b.timestamps) && !b.timestamps[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return
	}
	remaining := copy(b.timestamps, b.timestamps[i:])
	clear(b.timestamps[remaining:])
	b.timestamps = b.timestamps[:remaining]
}

// SlidingWindowLimiter implementa AdmissionController en memoria con conteo
// exacto de ventana deslizante. Un solo mutex protege la tabla de identidades,
// asi prune, comparacion y registro son atomicos para cada identidad.
//
// La tabla se acota con LRU cuando maxIdentities > 0: al superar el tope se
// descarta la identidad menos usada, lo que le devuelve la cuota completa.
type SlidingWindowLimiter struct {
	mu            sync.Mutex
	buckets       map[string]*list.Element
	lru           *list.List
	maxIdentities int
	now           func() time.Time
}

// NewSlidingWindowLimiter crea un limiter en memoria. maxIdentities <= 0 deja la
// tabla sin tope.
func NewSlidingWindowLimiter(maxIdentities int) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		buckets:       make(map[string]*list.Element),
		lru:           list.New(),
		maxIdentities: maxIdentities,
		now:           time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (l *SlidingWindowLimiter) WithClock(now func() time.Time) *SlidingWindowLimiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
	return l
}

func (l *SlidingWindowLimiter) TryAdmit(identity string, limit int, window time.Duration) bool {
	if limit <= 0 {
		return false
	}
	identity = normalizeIdentity(identity)
	window = normalizeWindow(window)

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	bucket := l.bucketLocked(identity, true)
	bucket.prune(now, window)
	if len(bucket.timestamps) >= limit {
		return false
	}
	bucket.timestamps = append(bucket.timestamps, now)
	return true
}

func (l *SlidingWindowLimiter) Remaining(identity string, limit int, window time.Duration) int {
	if limit <= 0 {
		return 0
	}
	identity = normalizeIdentity(identity)
	window = normalizeWindow(window)

	l.mu.Lock()
	defer l.mu.Unlock()

	bucket := l.bucketLocked(identity, false)
	if bucket == nil {
		return limit
	}
	bucket.prune(l.now(), window)
	used := len(bucket.timestamps)
	l.dropIfEmptyLocked(bucket)
	if used >= limit {
		return 0
	}
	return limit - used
}

func (l *SlidingWindowLimiter) ResetAt(identity string, window time.Duration) time.Time {
	identity = normalizeIdentity(identity)
	window = normalizeWindow(window)

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	bucket := l.bucketLocked(identity, false)
	if bucket == nil {
		return now
	}
	bucket.prune(now, window)
	if len(bucket.timestamps) == 0 {
		l.dropIfEmptyLocked(bucket)
		return now
	}
	return bucket.timestamps[0].Add(window)
}

// Len devuelve la cantidad de identidades con bucket vivo.
func (l *SlidingWindowLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// bucketLocked busca (y opcionalmente crea) el bucket de identity, moviendolo
// al frente del LRU. Requiere l.mu tomado.
func (l *SlidingWindowLimiter) bucketLocked(identity string, create bool) *rateLimitBucket {
	if elem, ok := l.buckets[identity]; ok {
		l.lru.MoveToFront(elem)
		return elem.Value.(*rateLimitBucket)
	}
	if !create {
		return nil
	}
	bucket := &rateLimitBucket{identity: identity}
	l.buckets[identity] = l.lru.PushFront(bucket)
	l.evictLocked()
	return bucket
}

func (l *SlidingWindowLimiter) evictLocked() {
	if l.maxIdentities <= 0 {
		return
	}
	for len(l.buckets) > l.maxIdentities {
		oldest := l.lru.Back()
		if oldest == nil {
			return
		}
		l.lru.Remove(oldest)
		delete(l.buckets, oldest.Value.(*rateLimitBucket).identity)
	}
}

func (l *SlidingWindowLimiter) dropIfEmptyLocked(bucket *rateLimitBucket) {
	if len(bucket.timestamps) > 0 {
		return
	}
	if elem, ok := l.buckets[bucket.identity]; ok {
		l.lru.Remove(elem)
		delete(l.buckets, bucket.identity)
	}
}

func normalizeIdentity(identity string) string {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return unknownIdentity
	}
	return identity
}

func normalizeWindow(window time.Duration) time.Duration {
	if window <= 0 {
		return defaultAdmissionWindow
	}
	return window
}
