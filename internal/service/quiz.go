package service

import "properly/internal/model"

// QuizDefinition returns the questionnaire shown before the results
func QuizDefinition() *model.QuizResponse {
	return &model.QuizResponse{
		Steps: []model.QuizStep{
			{ID: "propertyType", Title: "Property Type", Question: "What type of property are you primarily interested in?"},
			{ID: "location", Title: "Preferred Location", Question: "Select a popular destination, or type your own preference."},
			{ID: "pool", Title: "Pool Preference", Question: "Is having a pool (private or community) important to you?"},
		},
		PropertyTypes: model.PropertyTypes(),
		PopularLocations: []model.PopularLocation{
			{Name: "Bangkok", Image: "https://images.unsplash.com/photo-1539086915129-883ea5789481?q=80&w=400&auto=format&fit=crop"},
			{Name: "Phuket", Image: "https://images.unsplash.com/photo-1589588978434-f99496384059?q=80&w=400&auto=format&fit=crop"},
			{Name: "Chiang Mai", Image: "https://images.unsplash.com/photo-1596348482613-596985a133d1?q=80&w=400&auto=format&fit=crop"},
			{Name: "Pattaya", Image: "https://images.unsplash.com/photo-1592911319024-e6b8c4331776?q=80&w=400&auto=format&fit=crop"},
			{Name: "Hua Hin", Image: "https://images.unsplash.com/photo-1628177439343-a6b8e2103322?q=80&w=400&auto=format&fit=crop"},
		},
	}
}
