package edtypes

// Clone возвращает глубокую копию документа.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	res := &Document{}
	for _, b := range d.Blocks {
		res.Blocks = append(res.Blocks, CloneBlock(b))
	}
	return res
}

func CloneBlock(b Block) Block {
	switch b := b.(type) {
	case *Paragraph:
		return &Paragraph{Align: b.Align, Children: CloneInlines(b.Children)}
	case *Heading:
		return &Heading{Level: b.Level, Align: b.Align, Children: CloneInlines(b.Children)}
	case *Quote:
		return &Quote{Align: b.Align, Children: CloneInlines(b.Children)}
	case *List:
		l := &List{Ordered: b.Ordered}
		for _, item := range b.Items {
			if item == nil {
				l.Items = append(l.Items, nil)
				continue
			}
			l.Items = append(l.Items, &ListItem{Children: CloneInlines(item.Children)})
		}
		return l
	}
	return nil
}

func CloneInlines(in []Inline) []Inline {
	var res []Inline
	for _, c := range in {
		switch c := c.(type) {
		case *Text:
			res = append(res, c.Clone())
		case *Link:
			l := &Link{Href: c.Href, Target: c.Target, Rel: c.Rel}
			for _, t := range c.Children {
				l.Children = append(l.Children, t.Clone())
			}
			res = append(res, l)
		}
	}
	return res
}

func (t *Text) Clone() *Text {
	if t == nil {
		return nil
	}
	n := *t
	if t.Color != nil {
		c := *t.Color
		n.Color = &c
	}
	if t.BgColor != nil {
		c := *t.BgColor
		n.BgColor = &c
	}
	return &n
}

// Normalize сливает соседние тексты с одинаковым форматированием,
// убирает пустые тексты и пустые ссылки. Пустые списки удаляются.
// Документ без блоков получает один пустой параграф.
func (d *Document) Normalize() {
	var blocks []Block
	for _, b := range d.Blocks {
		switch b := b.(type) {
		case *Paragraph:
			b.Children = NormalizeInlines(b.Children)
		case *Heading:
			b.Children = NormalizeInlines(b.Children)
		case *Quote:
			b.Children = NormalizeInlines(b.Children)
		case *List:
			var items []*ListItem
			for _, item := range b.Items {
				if item == nil {
					continue
				}
				item.Children = NormalizeInlines(item.Children)
				items = append(items, item)
			}
			if len(items) == 0 {
				continue
			}
			b.Items = items
		case nil:
			continue
		}
		blocks = append(blocks, b)
	}
	if len(blocks) == 0 {
		blocks = []Block{&Paragraph{}}
	}
	d.Blocks = blocks
}

func NormalizeInlines(in []Inline) []Inline {
	var res []Inline
	for _, c := range in {
		switch c := c.(type) {
		case *Text:
			if c.Content == "" {
				continue
			}
			if len(res) > 0 {
				if prev, ok := res[len(res)-1].(*Text); ok && prev.SameFormat(c) {
					prev.Content += c.Content
					continue
				}
			}
			res = append(res, c)
		case *Link:
			texts := mergeTexts(c.Children)
			if len(texts) == 0 {
				continue
			}
			c.Children = texts
			if len(res) > 0 {
				if prev, ok := res[len(res)-1].(*Link); ok && prev.Href == c.Href && prev.Target == c.Target && prev.Rel == c.Rel {
					prev.Children = mergeTexts(append(prev.Children, c.Children...))
					continue
				}
			}
			res = append(res, c)
		}
	}
	return res
}

func mergeTexts(in []*Text) []*Text {
	var res []*Text
	for _, t := range in {
		if t.Content == "" {
			continue
		}
		if len(res) > 0 && res[len(res)-1].SameFormat(t) {
			res[len(res)-1].Content += t.Content
			continue
		}
		res = append(res, t)
	}
	return res
}
