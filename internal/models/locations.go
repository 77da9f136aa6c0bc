package models

// Locations are the areas offered on the reservation form.
var Locations = []string{
	"Abaji", "Aco Estate", "Airport Road", "Apo", "Apo Dutse", "Area 1", "Area 11", "Area 3",
	"Asokoro", "Bude", "Bunkoro", "Burun", "Bwari", "Central Area", "Chafe", "Chika", "City Centre",
	"Dape", "Dakibiyu", "Dakwo", "Dei-Dei", "Duboyi", "Durumi", "Dutse Alhaji", "Dutse Makaranta",
	"Galadimawa", "Gaduwa", "Garki", "Garki II", "Gbazango", "Gbazango West", "Gidari Bahagwo",
	"Gosa", "Gudu", "Guzape I", "Guzape II", "Gwagwa", "Gwagwalada", "Gwarinpa", "Gui", "Gwari",
	"Idu", "Idogwari", "Industrial Area", "Jabi", "Jahi", "Jaite", "Kaba", "Kado", "Kabusa", "Kafe",
	"Kagini", "Kamo", "Karu", "Karshi", "Karsana", "Katampe", "Kaura", "Ketti", "Kpoto", "Kpeyegi",
	"Kubwa", "Kuje", "Kuje Hills", "Kukwaba", "Kurudu", "Kurudu Hill", "Kwali", "Kyami", "Lifecamp",
	"Lokogoma", "Lugbe", "Mabushi", "Maitama", "Mamusa", "Mbora", "Mpape", "National stadium",
	"Nbora", "Nyanya", "Okanje", "Orozo", "Parfun", "Pegi", "Pyakasa", "Sabon Gari", "Sabon Lugbe",
	"Sabo Gida", "Saraji", "Sauka", "Sheretti", "Suleja", "Tasha", "Tungan Maje", "Utako",
	"Waru-Pozema", "Wumba", "Wupa", "Wuse", "Wuse II", "Wuye", "Yimi", "Zuba",
}
