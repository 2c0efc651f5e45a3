package classify

import "git.thinkinpower.net/cardbin/mod"

// pattern is either a single prefix (max empty) or an inclusive prefix range.
type pattern struct {
	min string
	max string
}

type rule struct {
	network  mod.CardNetwork
	patterns []pattern
	gaps     []int
	lengths  []int
}

func p(prefix string) pattern        { return pattern{min: prefix} }
func r(min, max string) pattern      { return pattern{min: min, max: max} }
func ps(values ...pattern) []pattern { return values }

var defaultGaps = []int{4, 8, 12}

// rules are evaluated in order; every matching network is reported.
var rules = []rule{
	{
		network:  mod.CardNetworkAmex,
		patterns: ps(p("34"), p("37")),
		gaps:     []int{4, 10},
		lengths:  []int{15},
	},
	{
		network:  mod.CardNetworkDiners,
		patterns: ps(r("300", "305"), p("36"), p("38"), p("39")),
		gaps:     []int{4, 10},
		lengths:  []int{14, 16, 19},
	},
	{
		network:  mod.CardNetworkDiscover,
		patterns: ps(p("6011"), r("644", "649"), p("65")),
		gaps:     defaultGaps,
		lengths:  []int{16, 19},
	},
	{
		network: mod.CardNetworkElo,
		patterns: ps(
			p("401178"), p("401179"), p("438935"), p("457631"), p("457632"),
			p("431274"), p("451416"), p("457393"), p("504175"),
			r("506699", "506778"), r("509000", "509999"), p("627780"),
			p("636297"), p("636368"), r("650031", "650033"),
			r("650035", "650051"), r("650405", "650439"),
			r("650485", "650538"), r("650541", "650598"),
			r("650700", "650718"), r("650720", "650727"),
			r("650901", "650978"), r("651652", "651679"),
			r("655000", "655019"), r("655021", "655058"),
		),
		gaps:    defaultGaps,
		lengths: []int{16},
	},
	{
		network: mod.CardNetworkHiper,
		patterns: ps(
			p("637095"), p("63737423"), p("63743358"), p("637568"),
			p("637599"), p("637609"), p("637612"),
		),
		gaps:    defaultGaps,
		lengths: []int{16},
	},
	{
		network:  mod.CardNetworkHipercard,
		patterns: ps(p("606282")),
		gaps:     defaultGaps,
		lengths:  []int{16},
	},
	{
		network:  mod.CardNetworkJCB,
		patterns: ps(p("2131"), p("1800"), r("3528", "3589")),
		gaps:     defaultGaps,
		lengths:  []int{16, 17, 18, 19},
	},
	{
		network: mod.CardNetworkMasterCard,
		patterns: ps(
			r("51", "55"), r("2221", "2229"), r("223", "229"),
			r("23", "26"), r("270", "271"), p("2720"),
		),
		gaps:    []int{4, 10},
		lengths: []int{16},
	},
	{
		network: mod.CardNetworkMaestro,
		patterns: ps(
			p("493698"), r("500000", "504174"), r("504176", "506698"),
			r("506779", "508999"), r("56", "59"), p("63"), p("67"), p("6"),
		),
		gaps:    defaultGaps,
		lengths: []int{16, 17, 18, 19},
	},
	{
		network:  mod.CardNetworkMir,
		patterns: ps(r("2200", "2204")),
		gaps:     defaultGaps,
		lengths:  []int{16, 17, 18, 19},
	},
	{
		network:  mod.CardNetworkVisa,
		patterns: ps(p("4")),
		gaps:     defaultGaps,
		lengths:  []int{16, 18, 19},
	},
	{
		network: mod.CardNetworkUnionPay,
		patterns: ps(
			p("620"), r("624", "626"), r("62100", "62182"), r("62184", "62187"),
			r("62185", "62197"), r("62200", "62205"), r("622010", "622999"),
			p("622018"), r("622019", "622999"), r("62207", "62209"),
			r("622126", "622925"), r("623", "626"), p("6270"), p("6272"),
			p("6276"), r("627700", "627779"), r("627781", "627799"),
			r("6282", "6289"), p("6291"), p("6292"), p("810"),
			r("8110", "8131"), r("8132", "8151"), r("8152", "8163"),
			r("8164", "8171"),
		),
		gaps:    defaultGaps,
		lengths: []int{14, 15, 16, 17, 18, 19},
	},
}

func ruleFor(network mod.CardNetwork) (rule, bool) {
	for _, v := range rules {
		if v.network == network {
			return v, true
		}
	}
	return rule{}, false
}
