package worker

import "sync"

// item はキューの要素（ジョブまたはポイズントークン）
type item struct {
	job    Job
	poison bool
}

// queue は上限のないFIFOキュー
// 取り出しはミューテックスで直列化される
type queue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []item
	closed bool
}

func newQueue() *queue {
	q := &queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// push は要素を末尾に追加する。クローズ済みなら false
func (q *queue) push(it item) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.items = append(q.items, it)
	q.cond.Signal()
	return true
}

// pop は先頭の要素を取り出す。空の間はブロックする
// クローズ済みかつ空の場合は false
func (q *queue) pop() (item, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return item{}, false
	}

	it := q.items[0]
	q.items[0] = item{}
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}
	return it, true
}

// close はキューを閉じ、残っている要素を破棄する
func (q *queue) close() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	dropped := 0
	for _, it := range q.items {
		if !it.poison {
			dropped++
		}
	}
	q.items = nil
	q.closed = true
	q.cond.Broadcast()
	return dropped
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
