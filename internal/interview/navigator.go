package interview

import "fmt"

// Navigator 记录当前题目，非并发安全，由 Controller 串行访问
type Navigator struct {
	count        int
	active       int
	onTransition func(from, to int)
}

// Progress 当前进度，用于展示
type Progress struct {
	Position int     `json:"position"`
	Total    int     `json:"total"`
	Percent  float64 `json:"percent"`
	IsLast   bool    `json:"isLast"`
}

func NewNavigator(count int) (*Navigator, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: interview has no questions", ErrMalformedData)
	}
	return &Navigator{count: count}, nil
}

// OnTransition 下标每次变化后执行的回调
func (n *Navigator) OnTransition(fn func(from, to int)) {
	n.onTransition = fn
}

func (n *Navigator) Active() int { return n.active }

func (n *Navigator) Count() int { return n.count }

func (n *Navigator) IsLast() bool { return n.active == n.count-1 }

func (n *Navigator) Next() error {
	if n.IsLast() {
		return ErrAtEnd
	}
	n.move(n.active + 1)
	return nil
}

// Previous 回到上一题，已是第一题时返回 false
func (n *Navigator) Previous() bool {
	if n.active == 0 {
		return false
	}
	n.move(n.active - 1)
	return true
}

func (n *Navigator) JumpTo(index int) error {
	if index < 0 || index >= n.count {
		return fmt.Errorf("%w: %d not in [0,%d)", ErrInvalidIndex, index, n.count)
	}
	n.move(index)
	return nil
}

func (n *Navigator) Progress() Progress {
	pos := n.active + 1
	return Progress{
		Position: pos,
		Total:    n.count,
		Percent:  float64(pos) / float64(n.count) * 100,
		IsLast:   n.IsLast(),
	}
}

func (n *Navigator) move(to int) {
	from := n.active
	n.active = to
	if n.onTransition != nil {
		n.onTransition(from, to)
	}
}
