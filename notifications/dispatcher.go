package notifications

import (
	"fmt"
	"log"

	"github.com/anjiri1684/tutor_match/models"
	"github.com/anjiri1684/tutor_match/services"
)

// DispatchMatchingEvents turns the state machine's post-transition events
// into outbound notifications and collaborator calls. By the time this runs
// the store write has already committed, so every failure here is logged and
// swallowed; the lifecycle never rolls back because an email bounced.
func DispatchMatchingEvents(events []services.MatchingEvent) {
	for _, event := range events {
		switch event.Kind {
		case services.EventMatchingRequested:
			notifyMatchingRequested(event.Matching)
		case services.EventMatchingAccepted:
			notifyMatchingAccepted(event.Matching)
		case services.EventMatchingRefused:
			notifyMatchingRefused(event.Matching, event.Reason)
		case services.EventEnsureConversation:
			ensureConversation(event.Matching)
		case services.EventMatchingConfirmed:
			handleMatchingConfirmed(event.Matching)
		default:
			log.Printf("Unknown matching event kind %q, skipping.", event.Kind)
		}
	}
}

func notifyMatchingRequested(matching models.Matching) {
	tutor, err := services.GetUser(matching.TutorID)
	if err != nil {
		log.Printf("🔥 Could not resolve tutor %s for request notification: %v", matching.TutorID, err)
		return
	}

	subject := "You Have a New Contact Request!"
	text := fmt.Sprintf("%s would like to learn with you. Log in to accept or refuse the request.", matching.LearnerName)
	html := fmt.Sprintf("<h1>New Contact Request</h1><p><b>%s</b> would like to learn with you. Please log in to your dashboard to accept or refuse the request.</p>", matching.LearnerName)
	SendEmail(tutor.FullName, tutor.Email, subject, text, html)
}

func notifyMatchingAccepted(matching models.Matching) {
	learner, err := services.GetUser(matching.LearnerID)
	if err != nil {
		log.Printf("🔥 Could not resolve learner %s for accept notification: %v", matching.LearnerID, err)
		return
	}

	subject := fmt.Sprintf("%s Accepted Your Request!", matching.TutorName)
	text := fmt.Sprintf("Good news: %s accepted your contact request. You can now message each other.", matching.TutorName)
	html := fmt.Sprintf("<h1>Request Accepted</h1><p>Good news! <b>%s</b> accepted your contact request. You can now message each other on the platform.</p>", matching.TutorName)
	SendEmail(learner.FullName, learner.Email, subject, text, html)
}

func notifyMatchingRefused(matching models.Matching, reason string) {
	learner, err := services.GetUser(matching.LearnerID)
	if err != nil {
		log.Printf("🔥 Could not resolve learner %s for refusal notification: %v", matching.LearnerID, err)
		return
	}

	subject := "Update on Your Contact Request"
	text := fmt.Sprintf("%s was unable to take your request. Reason: %s", matching.TutorName, reason)
	html := fmt.Sprintf("<h1>Request Update</h1><p><b>%s</b> was unable to take your request.</p><p><b>Reason:</b> %s</p><p>You can contact another tutor at any time.</p>", matching.TutorName, reason)
	SendEmail(learner.FullName, learner.Email, subject, text, html)
}

// ensureConversation opens the channel between the two parties on accept.
// The conversation service is itself idempotent, so a duplicate call from a
// retried accept is harmless.
func ensureConversation(matching models.Matching) {
	if _, err := services.GetOrCreateConversation(matching.LearnerID, matching.TutorID); err != nil {
		log.Printf("🔥 Could not ensure conversation for matching %s: %v", matching.ID, err)
	}
}

// handleMatchingConfirmed runs the reputation accounting for a matching that
// just reached confirmed for the first time. The student counter goes first
// so the recompute reads the bumped value.
func handleMatchingConfirmed(matching models.Matching) {
	if err := services.IncrementTutorStudentCount(matching.TutorID); err != nil {
		log.Printf("🔥 Could not bump student count for tutor %s: %v", matching.TutorID, err)
	}
	services.RecomputeReputationWithRetry(matching.TutorID)
}

// SendFollowUpReminder asks both parties of an idle matching how it went.
func SendFollowUpReminder(matching models.Matching) {
	learner, learnerErr := services.GetUser(matching.LearnerID)
	tutor, tutorErr := services.GetUser(matching.TutorID)

	subject := "How Is Your Tutoring Going?"
	if learnerErr == nil {
		text := fmt.Sprintf("You contacted %s a while ago. Let us know whether the lessons worked out.", matching.TutorName)
		html := fmt.Sprintf("<h1>Quick Check-in</h1><p>You contacted <b>%s</b> a while ago. Please log in and let us know whether the lessons worked out.</p>", matching.TutorName)
		SendEmail(learner.FullName, learner.Email, subject, text, html)
	} else {
		log.Printf("🔥 Could not resolve learner %s for reminder: %v", matching.LearnerID, learnerErr)
	}
	if tutorErr == nil {
		text := fmt.Sprintf("%s contacted you a while ago. Let us know whether the lessons worked out.", matching.LearnerName)
		html := fmt.Sprintf("<h1>Quick Check-in</h1><p><b>%s</b> contacted you a while ago. Please log in and let us know whether the lessons worked out.</p>", matching.LearnerName)
		SendEmail(tutor.FullName, tutor.Email, subject, text, html)
	} else {
		log.Printf("🔥 Could not resolve tutor %s for reminder: %v", matching.TutorID, tutorErr)
	}
}

// SendWelcome mails freshly issued credentials to an invited user.
func SendWelcome(user models.User, tempPassword string) {
	subject := "Welcome to the Platform!"
	text := fmt.Sprintf("Hi %s, your account is ready. Temporary password: %s", user.FullName, tempPassword)
	html := fmt.Sprintf("<h1>Welcome, %s!</h1><p>Your account has been created.</p><p><b>Temporary password:</b> %s</p><p>Please sign in and change it right away.</p>", user.FullName, tempPassword)
	SendEmail(user.FullName, user.Email, subject, text, html)
}
