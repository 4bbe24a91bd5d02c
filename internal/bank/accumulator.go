package bank

// QuestionKey identifies a question within the service booklet.
type QuestionKey struct {
	ExamYear       int
	SubjectCode    string
	QuestionNoExam int
}

// OXKey identifies an OX assertion: its parent question plus choice number.
type OXKey struct {
	QuestionKey
	ChoiceNo int
}

// Accumulator is an insertion-ordered map where the first value added for a
// key wins. Source data may carry near-duplicates; feeding it in a
// deterministic order makes the resolution deterministic too.
type Accumulator[K comparable, V any] struct {
	index map[K]int
	keys  []K
	items []V
}

func NewAccumulator[K comparable, V any]() *Accumulator[K, V] {
	return &Accumulator[K, V]{index: map[K]int{}}
}

// Add stores v under key unless key is already present. It reports whether
// v was stored.
func (a *Accumulator[K, V]) Add(key K, v V) bool {
	if _, ok := a.index[key]; ok {
		return false
	}
	a.index[key] = len(a.items)
	a.keys = append(a.keys, key)
	a.items = append(a.items, v)
	return true
}

// Has reports whether key was added.
func (a *Accumulator[K, V]) Has(key K) bool {
	_, ok := a.index[key]
	return ok
}

// Get returns the value stored under key.
func (a *Accumulator[K, V]) Get(key K) (V, bool) {
	i, ok := a.index[key]
	if !ok {
		var zero V
		return zero, false
	}
	return a.items[i], true
}

// Len is the number of distinct keys.
func (a *Accumulator[K, V]) Len() int { return len(a.items) }

// Items returns values in first-seen order.
func (a *Accumulator[K, V]) Items() []V {
	out := make([]V, len(a.items))
	copy(out, a.items)
	return out
}

// Keys returns keys in first-seen order.
func (a *Accumulator[K, V]) Keys() []K {
	out := make([]K, len(a.keys))
	copy(out, a.keys)
	return out
}
