package store

// SeedLGA is one row of the fixed Ogun State directory.
type SeedLGA struct {
	Name string
	Code string
}

// OgunLGAs is the seeded directory, in ID order.
var OgunLGAs = []SeedLGA{
	{"Abeokuta North", "ABN"},
	{"Abeokuta South", "ABS"},
	{"Ado-Odo/Ota", "ADO"},
	{"Ewekoro", "EWE"},
	{"Ifo", "IFO"},
	{"Ijebu East", "IJE"},
	{"Ijebu North", "IJN"},
	{"Ijebu North East", "INE"},
	{"Ijebu Ode", "IJO"},
	{"Ikenne", "IKE"},
	{"Imeko Afon", "IMA"},
	{"Ipokia", "IPO"},
	{"Obafemi Owode", "OBO"},
	{"Odeda", "ODE"},
	{"Odogbolu", "ODO"},
	{"Ogun Waterside", "OGW"},
	{"Remo North", "REN"},
	{"Sagamu", "SAG"},
	{"Yewa North", "YEN"},
	{"Yewa South", "YES"},
}
