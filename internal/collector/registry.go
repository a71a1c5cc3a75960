package collector

// Registry manages collector instances by name.
type Registry struct {
	prices       map[string]PriceCollector
	fundamentals map[string]FundamentalsCollector
	seriesSrcs   map[string]SeriesCollector
}

// NewRegistry creates an empty collector registry.
func NewRegistry() *Registry {
	return &Registry{
		prices:       make(map[string]PriceCollector),
		fundamentals: make(map[string]FundamentalsCollector),
		seriesSrcs:   make(map[string]SeriesCollector),
	}
}

func (r *Registry) RegisterPrices(c PriceCollector) {
	r.prices[c.Name()] = c
}

func (r *Registry) RegisterFundamentals(c FundamentalsCollector) {
	r.fundamentals[c.Name()] = c
}

func (r *Registry) RegisterSeries(c SeriesCollector) {
	r.seriesSrcs[c.Name()] = c
}

func (r *Registry) Prices(name string) (PriceCollector, bool) {
	c, ok := r.prices[name]
	return c, ok
}

func (r *Registry) Fundamentals(name string) (FundamentalsCollector, bool) {
	c, ok := r.fundamentals[name]
	return c, ok
}

func (r *Registry) Series(name string) (SeriesCollector, bool) {
	c, ok := r.seriesSrcs[name]
	return c, ok
}
