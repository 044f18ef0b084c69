package assets

import "fmt"

// AttireOption describes one selectable outfit for the bride or groom.
// The Prompt field is the descriptive fragment spliced into the generation
// prompt; Name and Description are what the CLI shows the user.
type AttireOption struct {
	ID          string
	Name        string
	Description string
	Prompt      string
}

// BrideAttireOptions are the selectable bride outfits, in display order.
var BrideAttireOptions = []AttireOption{
	{
		ID:          "classic-lehenga",
		Name:        "Classic Lehenga",
		Description: "A traditional, ornate lehenga in rich colors like red or maroon with heavy embroidery.",
		Prompt:      "a beautiful, traditional, and ornate Indian lehenga in rich, celebratory colors like deep red or maroon, featuring heavy, intricate embroidery and delicate, complementary jewelry",
	},
	{
		ID:          "modern-gown",
		Name:        "Modern Gown",
		Description: "A contemporary, elegant gown with Indian motifs, often in pastel shades or ivory.",
		Prompt:      "a contemporary and elegant fusion-style wedding gown that blends Indian motifs with a modern silhouette, in soft pastel shades or ivory, with tasteful, minimalist jewelry",
	},
	{
		ID:          "anarkali-suit",
		Name:        "Anarkali Suit",
		Description: "A floor-length, flowing Anarkali suit that is both royal and graceful.",
		Prompt:      "a royal and graceful floor-length, flowing Anarkali suit, designed for a wedding with rich fabric and elegant embellishments",
	},
}

// GroomAttireOptions are the selectable groom outfits, in display order.
var GroomAttireOptions = []AttireOption{
	{
		ID:          "classic-sherwani",
		Name:        "Classic Sherwani",
		Description: "A timeless, elegant sherwani in cream, gold, or beige with detailed embroidery.",
		Prompt:      "a timeless and elegant traditional Indian sherwani in classic colors like cream, gold, or beige, featuring detailed embroidery and a royal look",
	},
	{
		ID:          "indo-western-suit",
		Name:        "Indo-Western Suit",
		Description: "A stylish fusion of a modern suit jacket with a traditional Indian silhouette.",
		Prompt:      "a stylish Indo-Western suit that fuses a modern tailored jacket with a traditional Indian silhouette, often in bold colors like royal blue or burgundy",
	},
	{
		ID:          "jodhpuri-suit",
		Name:        "Jodhpuri Suit",
		Description: "A sharp, royal \"bandhgala\" suit that offers a sophisticated, princely look.",
		Prompt:      "a sharp and royal Jodhpuri suit, also known as a \"bandhgala\", which has a closed-neck collar for a sophisticated and princely appearance",
	},
}

// Default attire instructions used when no explicit option was chosen.
const (
	defaultBrideAttire = "Dress her in a graceful and beautiful traditional Indian lehenga with delicate, complementary jewelry."
	defaultGroomAttire = "Dress him in a handsome and elegant traditional Indian sherwani."
)

// AttireChoice is the pair of attire prompt fragments selected for a run.
// Zero values fall back to the default traditional outfits.
type AttireChoice struct {
	Bride string
	Groom string
}

// BrideInstruction returns the full bride attire sentence for prompt insertion.
func (c AttireChoice) BrideInstruction() string {
	if c.Bride == "" {
		return defaultBrideAttire
	}
	return fmt.Sprintf("Dress her in %s.", c.Bride)
}

// GroomInstruction returns the full groom attire sentence for prompt insertion.
func (c AttireChoice) GroomInstruction() string {
	if c.Groom == "" {
		return defaultGroomAttire
	}
	return fmt.Sprintf("Dress him in %s.", c.Groom)
}

// FindAttireOption looks up an option by ID in the given catalog.
func FindAttireOption(options []AttireOption, id string) (AttireOption, bool) {
	for _, opt := range options {
		if opt.ID == id {
			return opt, true
		}
	}
	return AttireOption{}, false
}
