package ids

// Pool hands out 16-bit wire ids with a free list. Zero is never issued so
// it can stand for "nobody" on the wire; 0xFFFF is reserved as well.
type Pool struct {
	inUse    map[uint16]bool
	freeList []uint16
	next     uint16
}

func NewPool() *Pool {
	return &Pool{
		inUse:    make(map[uint16]bool, 64),
		freeList: make([]uint16, 0, 64),
		next:     1,
	}
}

// Acquire returns an unused id, or false when all are taken.
func (p *Pool) Acquire() (uint16, bool) {
	if n := len(p.freeList); n > 0 {
		id := p.freeList[n-1]
		p.freeList = p.freeList[:n-1]
		p.inUse[id] = true
		return id, true
	}
	if p.next == 0xFFFF {
		return 0, false
	}
	id := p.next
	p.next++
	p.inUse[id] = true
	return id, true
}

// Release returns id to the pool. Releasing an id not in use is a no-op.
func (p *Pool) Release(id uint16) {
	if !p.inUse[id] {
		return
	}
	delete(p.inUse, id)
	p.freeList = append(p.freeList, id)
}

func (p *Pool) InUse(id uint16) bool { return p.inUse[id] }

func (p *Pool) Len() int { return len(p.inUse) }

// Reset forgets every id; the next Acquire returns 1 again.
func (p *Pool) Reset() {
	clear(p.inUse)
	p.freeList = p.freeList[:0]
	p.next = 1
}
