package catalog

import "studio-storefront/internal/model"

func offering(id, name string, price int64, description string) model.ServiceOffering {
	return model.ServiceOffering{ID: id, Name: name, Price: price, Description: description}
}

// Default is the studio catalog. Prices are EUR cents.
func Default() *Catalog {
	c, err := New(defaultCategories)
	if err != nil {
		panic(err)
	}
	return c
}

var defaultCategories = []Category{
	{
		Name: "Poster Design",
		Services: []model.ServiceOffering{
			offering("tournament-poster", "Tournament Poster", 9000, "Professional tournament poster design"),
			offering("team-poster", "Team Poster", 7000, "Team-focused poster design"),
			offering("seminar-poster", "Seminar Poster", 8000, "Seminar and workshop poster design"),
			offering("athlete-highlight-poster", "Athlete Highlight Poster", 7000, "Individual athlete highlight poster"),
			offering("training-camp-poster", "Training Camp Poster", 8000, "Training camp and event poster design"),
			offering("custom-poster-design", "Custom Poster Design", 4500, "Fully customized poster design"),
		},
	},
	{
		Name: "Banner Design",
		Services: []model.ServiceOffering{
			offering("event-banner", "Event Banner", 13000, "Large format event banner design"),
			offering("dojo-banner", "Dojo Banner", 12000, "Dojo branding banner design"),
			offering("competition-banner", "Competition Banner", 12000, "Competition and tournament banner"),
			offering("roll-up-banner", "Roll-Up Banner", 11000, "Professional roll-up banner design"),
			offering("social-media-banner", "Social Media Banner (FB/Twitter/YouTube)", 6000, "Social media platform banner design"),
		},
	},
	{
		Name: "Logo Design",
		Services: []model.ServiceOffering{
			offering("karate-dojo-logo", "Karate Dojo Logo", 14000, "Professional dojo logo design"),
			offering("tournament-logo", "Tournament Logo", 14000, "Tournament and event logo design"),
			offering("personal-brand-logo", "Personal Brand Logo", 12000, "Personal branding logo design"),
			offering("mascot-logo", "Mascot Logo for Teams", 16000, "Team mascot logo design"),
			offering("minimal-modern-logo", "Minimal/Modern Logo (general use)", 11000, "Clean and modern logo design"),
		},
	},
	{
		Name: "Social Media Graphics",
		Services: []model.ServiceOffering{
			offering("instagram-post-pack", "Instagram Post Pack (5 posts)", 7000, "Pack of 5 Instagram post designs"),
			offering("instagram-story-pack", "Instagram Story Pack (5 stories)", 6000, "Pack of 5 Instagram story designs"),
			offering("facebook-instagram-ad", "Facebook/Instagram Ad Design", 4000, "Professional ad design for social media"),
			offering("athlete-dojo-social-pack", "Athlete/Dojo Social Pack (10 posts + 5 stories)", 12000, "Comprehensive social media pack"),
		},
	},
	{
		Name: "Merch & Apparel Design",
		Services: []model.ServiceOffering{
			offering("t-shirt-design", "T-Shirt Design", 6000, "Custom t-shirt design"),
			offering("hoodie-design", "Hoodie Design", 7000, "Custom hoodie design"),
			offering("gi-patch-dojo-patch", "Gi Patch / Dojo Patch", 5000, "Custom patch design for gi or dojo"),
			offering("merchandise-pack", "Merchandise Pack (T-shirt + Hoodie + Patch)", 15000, "Complete merchandise design pack"),
		},
	},
	{
		Name: "Event & Dojo Materials",
		Services: []model.ServiceOffering{
			offering("certificate-design", "Certificate Design (Belt / Participation / Achievement)", 5000, "Professional certificate design"),
			offering("medal-ribbon-design", "Medal/Ribbon Design", 6000, "Medal and ribbon design"),
			offering("ticket-pass-design", "Ticket/Pass Design", 4000, "Event ticket and pass design"),
			offering("business-card-design", "Business Card Design", 4000, "Professional business card design"),
			offering("flyer-leaflet-single", "Flyer/Leaflet (single side)", 5000, "Single-sided flyer design"),
			offering("flyer-leaflet-double", "Flyer/Leaflet (double side)", 7000, "Double-sided flyer design"),
		},
	},
	{
		Name: "Digital & Video Graphics",
		Services: []model.ServiceOffering{
			offering("motion-poster-animated-ad", "Motion Poster / Animated Social Ad", 9000, "Animated poster and social media ads"),
			offering("video-intro-outro", "Video Intro/Outro", 12000, "Professional video intro and outro design"),
			offering("tournament-promo-video", "Tournament Promo Video (short edit)", 15000, "Short tournament promotional video"),
		},
	},
	{
		Name: "Package Deals",
		Services: []model.ServiceOffering{
			offering("event-branding-package", "Event Branding Package", 22000, "Complete event branding solution"),
			offering("dojo-starter-pack", "Dojo Starter Pack", 30000, "Essential dojo branding package"),
			offering("athlete-highlight-pack", "Athlete Highlight Pack", 15000, "Complete athlete branding package"),
			offering("tournament-promo-pack", "Tournament Promo Pack", 35000, "Comprehensive tournament promotion package"),
			offering("social-media-growth-pack", "Social Media Growth Pack", 20000, "Complete social media growth solution"),
			offering("complete-dojo-identity-pack", "Complete Dojo Identity Pack", 50000, "Full dojo identity and branding package"),
		},
	},
}
