package delivery

import (
	"fmt"

	"github.com/diskleads/leadmarket-backend/pkg/db/models"
)

// EmailSubject renders the delivery subject line for an order.
func EmailSubject(order *models.Order) string {
	return fmt.Sprintf("Seus Leads Chegaram! (Ref: %s)", order.Reference)
}

// EmailBody renders the HTML delivery mail carrying the artifact link.
func EmailBody(order *models.Order) string {
	return fmt.Sprintf(`<html>
  <body>
    <h2>Pagamento Confirmado!</h2>
    <p>Olá! Seu pedido foi processado com sucesso.</p>
    <p><strong>Referência:</strong> %s</p>
    <p>Clique no botão abaixo para baixar sua lista de leads:</p>
    <a href="%s" style="background-color: #2ecc71; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px;">BAIXAR LEADS AGORA</a>
    <br><br>
    <p>Obrigado por escolher o DiskLeads!</p>
  </body>
</html>`, order.Reference, order.ArtifactURL)
}
