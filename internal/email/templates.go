package email

import "fmt"

// BuildLowStockAlertBody builds the HTML body for a low-stock alert email
func BuildLowStockAlertBody(productName string, currentStock, threshold int) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<div style="background: linear-gradient(135deg, #f5576c 0%%, #f093fb 100%%); padding: 30px; border-radius: 10px 10px 0 0;">
		<h1 style="color: white; margin: 0; font-size: 24px;">在庫アラート</h1>
	</div>

	<div style="background: #fff; padding: 30px; border: 1px solid #eee; border-top: none; border-radius: 0 0 10px 10px;">
		<p style="margin-top: 0;">以下の商品の在庫が設定された下限値を下回りました。補充をご検討ください。</p>

		<div style="background: #f8f9fa; padding: 15px; border-radius: 5px; margin: 20px 0;">
			<p style="margin: 0; font-size: 14px; color: #666;">商品名</p>
			<p style="margin: 5px 0 0 0; font-size: 18px; font-weight: bold;">%s</p>
		</div>

		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<tr>
				<td style="padding: 12px; border-bottom: 1px solid #eee;">現在在庫</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right; font-weight: bold;">%d</td>
			</tr>
			<tr>
				<td style="padding: 12px; border-bottom: 1px solid #eee;">在庫下限値</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">%d</td>
			</tr>
		</table>

		<p style="font-size: 12px; color: #999; margin-bottom: 0;">このメールは在庫管理システムから自動送信されています。</p>
	</div>
</body>
</html>`,
		productName,
		currentStock,
		threshold,
	)
}
