package mailer

import (
	"fmt"
	"html"
)

func WelcomeAdmin(appName, schoolName, fullName, email, tempPassword string) Message {
	text := fmt.Sprintf(
		"Bonjour %s,\n\nUn compte administrateur a été créé pour %s sur %s.\n"+
			"Identifiant : %s\nMot de passe temporaire : %s\n\nMerci de le changer à la première connexion.",
		fullName, schoolName, appName, email, tempPassword)
	return Message{
		ToName:    fullName,
		ToEmail:   email,
		Subject:   fmt.Sprintf("[%s] Bienvenue, administrateur de %s", appName, schoolName),
		PlainText: text,
		HTML:      "<pre>" + html.EscapeString(text) + "</pre>",
	}
}

func ReportCardReady(appName, parentName, email, studentName, termName string, overall *float64, rank *int) Message {
	summary := ""
	if overall != nil {
		summary = fmt.Sprintf("\nMoyenne générale : %.2f/20", *overall)
	}
	if rank != nil {
		summary += fmt.Sprintf("\nRang : %d", *rank)
	}
	text := fmt.Sprintf("Bonjour %s,\n\nLe bulletin de %s pour %s est disponible.%s\n",
		parentName, studentName, termName, summary)
	return Message{
		ToName:    parentName,
		ToEmail:   email,
		Subject:   fmt.Sprintf("[%s] Bulletin %s - %s", appName, termName, studentName),
		PlainText: text,
		HTML:      "<pre>" + html.EscapeString(text) + "</pre>",
	}
}

func ParentMessage(appName, parentName, email, senderName, subject, body string) Message {
	text := fmt.Sprintf("Bonjour %s,\n\n%s\n\n%s", parentName, body, senderName)
	return Message{
		ToName:    parentName,
		ToEmail:   email,
		Subject:   fmt.Sprintf("[%s] %s", appName, subject),
		PlainText: text,
		HTML:      "<pre>" + html.EscapeString(text) + "</pre>",
	}
}

// WelcomeStaff: akun guru/staf baru yang dibuat admin sekolah.
func WelcomeStaff(appName, schoolName, fullName, email, tempPassword, roleLabel string) Message {
	text := fmt.Sprintf(
		"Bonjour %s,\n\nVotre compte %s pour %s a été créé sur %s.\n"+
			"Identifiant : %s\nMot de passe temporaire : %s\n",
		fullName, roleLabel, schoolName, appName, email, tempPassword)
	return Message{
		ToName:    fullName,
		ToEmail:   email,
		Subject:   fmt.Sprintf("[%s] Votre compte %s", appName, roleLabel),
		PlainText: text,
		HTML:      "<pre>" + html.EscapeString(text) + "</pre>",
	}
}
