package model

import (
	"strconv"
	"strings"
)

// PreferenceTable maps numeric client ids to their placement preferences.
type PreferenceTable map[int]ClientPreference

// Lookup returns the preference of the client, if any. Client ids that are
// not numeric never have a preference.
func (t PreferenceTable) Lookup(clientID string) (ClientPreference, bool) {
	id, err := strconv.Atoi(strings.TrimSpace(clientID))
	if err != nil {
		return ClientPreference{}, false
	}
	p, ok := t[id]
	return p, ok
}

// DefaultPreferences returns the built-in preference table.
func DefaultPreferences() PreferenceTable {
	front := []Position{PositionFront}
	back := []Position{PositionBack}
	return PreferenceTable{
		6765:  {Lado: LadoDriver, Positions: front},
		4022:  {Lado: LadoDriver, Positions: back},
		5540:  {Lado: LadoDriver, LayDown: true},
		7604:  {Lado: LadoHelper, LayDown: true},
		2494:  {Lado: LadoHelper, LayDown: true},
		1291:  {Positions: back},
		5595:  {Positions: front},
		6871:  {Positions: front},
		6217:  {Compartments: []string{"cavalete_2"}, Positions: back},
		2925:  {Compartments: []string{"malhal"}, Positions: back},
		10080: {Compartments: []string{"cavalete_3"}, Positions: back},
		103:   {Positions: front},
		3020:  {Lado: LadoHelper},
		7352:  {Compartments: []string{"cavalete_2", "cavalete_3"}, Positions: []Position{PositionBack, PositionEnd}},
		8716:  {Lado: LadoDriver, Positions: back},
		5973:  {Lado: LadoDriver, Compartments: []string{"cavalete_2"}, Positions: back},
		145:   {Positions: front},
		140:   {Lado: LadoDriver},
		1858:  {Lado: LadoDriver, Positions: front},
		2079:  {Lado: LadoDriver, Positions: front},
		5955:  {Lado: LadoDriver, Compartments: []string{"malhal"}, Positions: back},
		6805:  {Lado: LadoHelper, LayDown: true},
		1158:  {Lado: LadoHelper, LayDown: true},
		1844:  {Lado: LadoDriver, Positions: front},
		4342:  {Compartments: []string{"cavalete_2"}, Positions: back},
		5689:  {Positions: front},
		194:   {Lado: LadoDriver, Positions: back},
		2181:  {Lado: LadoDriver, Positions: front},
		224:   {Lado: LadoDriver},
		3076:  {Lado: LadoHelper, Positions: front},
		3511:  {Positions: front},
		7632:  {Lado: LadoDriver, Positions: front},
		6067:  {Lado: LadoDriver, Compartments: []string{"cavalete_3"}},
		3441:  {Lado: LadoHelper, LayDown: true},
		6243:  {Positions: front},
		2222:  {Lado: LadoDriver, Positions: back},
		1370:  {Positions: front},
		1588:  {Compartments: []string{"cavalete_2", "cavalete_3"}, Positions: back},
		2597:  {Positions: back},
		7280:  {Lado: LadoDriver, LayDown: true},
		27:    {Positions: back},
		1749:  {Compartments: []string{"cavalete_2", "cavalete_3"}},
		3456:  {Positions: back},
		2036:  {Positions: front},
		6729:  {Positions: front},
		6373:  {Lado: LadoHelper},
		2028:  {Lado: LadoHelper},
	}
}
